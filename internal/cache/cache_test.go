package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "gsz:v1:q:pricing:active", KeyQuery("pricing", "active"))
	assert.Equal(t, "gsz:v1:qidx:pricing", KeyQueryIndex("pricing"))
	assert.Equal(t, "gsz:v1:cart:abc", KeyCart("abc"))
	assert.Equal(t, "gsz:v1:rl:login:1.2.3.4", KeyRateLimit("login", "1.2.3.4"))
	assert.Equal(t, "gsz:v1:changes", ChannelChanges())
}

func TestNilCacheCallsLoader(t *testing.T) {
	var c *Cache
	calls := 0
	v, err := GetOrLoad(context.Background(), c, "consoles", "all", func(ctx context.Context) ([]int, error) {
		calls++
		return []int{1, 2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, v)
	assert.Equal(t, 1, calls)

	assert.NoError(t, c.InvalidateTables(context.Background(), "consoles"))
}

func TestNilCachePropagatesLoaderError(t *testing.T) {
	boom := errors.New("boom")
	_, err := GetOrLoad(context.Background(), (*Cache)(nil), "t", "v", func(ctx context.Context) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestNewCacheNilClient(t *testing.T) {
	assert.Nil(t, NewCache(nil))
}

func TestToInt(t *testing.T) {
	n, err := toInt(int64(3))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	n, err = toInt("4")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	_, err = toInt(nil)
	assert.Error(t, err)
}

func TestLimiterScopeRules(t *testing.T) {
	l := NewSlidingWindowLimiter(nil, 10, time.Minute).
		WithScope("admin_export", Rule{Limit: 2, Window: time.Hour})

	assert.Equal(t, Rule{Limit: 2, Window: time.Hour}, l.rule("admin_export"))
	assert.Equal(t, Rule{Limit: 10, Window: time.Minute}, l.rule("login"))
}
