package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"game_store_backend/pkg/utils"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL bounds staleness when an invalidation is missed.
const DefaultTTL = 60 * time.Second

// Cache is a JSON query cache over redis. A nil *Cache is valid and
// always calls the loader.
type Cache struct {
	rdb *redis.Client
	sf  singleflight.Group
}

func NewCache(client *redis.Client) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{rdb: client}
}

func getJSON[T any](ctx context.Context, c *Cache, key string) (T, bool, error) {
	var zero T

	s, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}

	var out T
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return zero, false, err
	}
	return out, true, nil
}

func (c *Cache) setJSON(ctx context.Context, table, key string, val any, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, key, b, ttl)
	pipe.SAdd(ctx, KeyQueryIndex(table), key)
	pipe.Expire(ctx, KeyQueryIndex(table), ttl*2)
	_, err = pipe.Exec(ctx)
	return err
}

// GetOrLoad returns the cached value of (table, variant) or loads, stores
// and returns it. Redis failures fall through to the loader.
func GetOrLoad[T any](
	ctx context.Context,
	c *Cache,
	table, variant string,
	loader func(ctx context.Context) (T, error),
) (T, error) {
	if c == nil {
		return loader(ctx)
	}

	key := KeyQuery(table, variant)
	if v, ok, err := getJSON[T](ctx, c, key); err == nil && ok {
		return v, nil
	} else if err != nil {
		utils.LogWarn(err, "cache: read failed", map[string]interface{}{"key": key})
	}

	vAny, err, _ := c.sf.Do(key, func() (any, error) {
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.setJSON(ctx, table, key, v, DefaultTTL); err != nil {
			utils.LogWarn(err, "cache: write failed", map[string]interface{}{"key": key})
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	v, ok := vAny.(T)
	if !ok {
		var zero T
		return zero, errors.New("cache: type assertion failed")
	}
	return v, nil
}

// InvalidateTables drops every cached listing of the given tables.
func (c *Cache) InvalidateTables(ctx context.Context, tables ...string) error {
	if c == nil {
		return nil
	}
	for _, table := range tables {
		idx := KeyQueryIndex(table)
		keys, err := c.rdb.SMembers(ctx, idx).Result()
		if err != nil {
			return err
		}
		if err := c.rdb.Del(ctx, append(keys, idx)...).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Invalidate is InvalidateTables with the error logged instead of returned.
func (c *Cache) Invalidate(ctx context.Context, tables ...string) {
	if err := c.InvalidateTables(ctx, tables...); err != nil {
		utils.LogWarn(err, "cache: invalidation failed", map[string]interface{}{"tables": tables})
	}
}
