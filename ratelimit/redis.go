package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window rate limiter backed by Redis, for
// deployments where multiple bridge instances serve the same source.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	prefix string
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// NewRedisLimiter creates a limiter admitting limit requests per window
// per client key.
func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration, prefix string) *RedisLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "bridge:rl"
	}
	return &RedisLimiter{rdb: rdb, limit: limit, window: window, prefix: prefix}
}

// Allow reports whether a request under key may proceed. Errors surface
// to the caller, which decides whether to fail open or closed.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.incr(ctx, l.prefix+":"+key)
	if err != nil {
		return false, err
	}
	return count <= int64(l.limit), nil
}

func (l *RedisLimiter) incr(ctx context.Context, key string) (int64, error) {
	ms := l.window.Milliseconds()
	res, err := fixedWindowScript.Run(ctx, l.rdb, []string{key}, ms).Result()
	if err != nil {
		return 0, err
	}
	switch v := res.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case string:
		// Lua sometimes returns strings depending on Redis config.
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return n, nil
	default:
		return 0, fmt.Errorf("ratelimit: unexpected redis script result type %T", res)
	}
}
