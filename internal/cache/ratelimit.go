package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rule allows Limit hits per Window.
type Rule struct {
	Limit  int
	Window time.Duration
}

// slidingWindowScript trims hits older than the window, records this one and
// answers {allowed, retry_after_ms}. A refused hit is removed again so that
// hammering a closed window does not keep it closed.
// KEYS[1] = bucket, ARGV = now_ms, window_ms, limit, hit id.
const slidingWindowScript = `
local bucket = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])

redis.call('ZREMRANGEBYSCORE', bucket, '-inf', now - window)
redis.call('ZADD', bucket, now, ARGV[4])
redis.call('PEXPIRE', bucket, window)

if redis.call('ZCARD', bucket) <= tonumber(ARGV[3]) then
  return {1, 0}
end
redis.call('ZREM', bucket, ARGV[4])
local oldest = redis.call('ZRANGE', bucket, 0, 0, 'WITHSCORES')
local wait = window
if oldest[2] then
  wait = math.max(0, tonumber(oldest[2]) + window - now)
end
return {0, wait}
`

// SlidingWindowLimiter counts hits per scope and client in Redis. Scopes
// without a rule of their own use the default rule.
type SlidingWindowLimiter struct {
	rdb    *redis.Client
	def    Rule
	scopes map[string]Rule
	script *redis.Script
	now    func() time.Time
}

func NewSlidingWindowLimiter(rdb *redis.Client, limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		rdb:    rdb,
		def:    Rule{Limit: limit, Window: window},
		scopes: map[string]Rule{},
		script: redis.NewScript(slidingWindowScript),
		now:    time.Now,
	}
}

// WithScope sets a dedicated rule for scope. Call it before serving traffic.
func (l *SlidingWindowLimiter) WithScope(scope string, r Rule) *SlidingWindowLimiter {
	l.scopes[scope] = r
	return l
}

func (l *SlidingWindowLimiter) rule(scope string) Rule {
	if r, ok := l.scopes[scope]; ok {
		return r
	}
	return l.def
}

func (l *SlidingWindowLimiter) Allow(ctx context.Context, scope, id string) (bool, time.Duration, error) {
	r := l.rule(scope)
	res, err := l.script.Run(ctx, l.rdb, []string{KeyRateLimit(scope, id)},
		l.now().UnixMilli(), r.Window.Milliseconds(), r.Limit, uuid.NewString(),
	).Slice()
	if err != nil {
		return false, 0, err
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("cache: limiter returned %d values", len(res))
	}
	waitMs, err := toInt(res[1])
	if err != nil {
		return false, 0, err
	}
	allowed, err := toInt(res[0])
	if err != nil {
		return false, 0, err
	}
	return allowed == 1, time.Duration(waitMs) * time.Millisecond, nil
}

// toInt reads a Lua number as delivered by go-redis.
func toInt(v interface{}) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, fmt.Errorf("cache: unexpected limiter value %T", v)
	}
}
