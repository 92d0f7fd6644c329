package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var fixedWindowScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return { current, ttl }
`)

// RedisFixedWindowLimiter counts hits per key in a shared window so every
// replica sees the same budget.
type RedisFixedWindowLimiter struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewRedisFixedWindowLimiter(client redis.UniversalClient, prefix string) *RedisFixedWindowLimiter {
	if prefix == "" {
		prefix = "rate_limit"
	}
	return &RedisFixedWindowLimiter{client: client, prefix: prefix, now: time.Now}
}

func (l *RedisFixedWindowLimiter) Allow(ctx context.Context, key string, policy RateLimitPolicy) (Decision, error) {
	policy = policy.normalized()
	windowMs := policy.Window.Milliseconds()
	if windowMs <= 0 {
		windowMs = 1
	}
	vals, err := fixedWindowScript.Run(ctx, l.client, []string{l.prefix + ":" + key}, windowMs).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("run rate limit script: %w", err)
	}
	arr, ok := vals.([]any)
	if !ok || len(arr) != 2 {
		return Decision{}, fmt.Errorf("unexpected rate limit script result %#v", vals)
	}
	count := asInt64(arr[0])
	ttl := time.Duration(asInt64(arr[1])) * time.Millisecond
	now := l.now()

	remaining := policy.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	d := Decision{
		Allowed:   count <= int64(policy.Limit),
		Remaining: remaining,
		ResetAt:   now.Add(ttl),
	}
	if !d.Allowed {
		d.RetryAfter = ttl
	}
	return d, nil
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
