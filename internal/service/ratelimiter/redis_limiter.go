// Package ratelimiter implements a token bucket shared by every API instance
// through Redis.
package ratelimiter

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	obsctx "github.com/ParthivReddyY/ai-interviewer/internal/observability"
)

// KeyPrefix namespaces bucket keys.
const KeyPrefix = "ai-interviewer:rate:"

// Limiter decides whether a caller identified by key may spend cost tokens.
type Limiter interface {
	Allow(ctx context.Context, key string, cost int64) (allowed bool, retryAfter time.Duration, err error)
}

// BucketConfig sizes a token bucket.
type BucketConfig struct {
	Capacity   int64
	RefillRate float64 // tokens per second
}

// NewBucketConfigFromPerMinute returns a bucket that allows perMinute requests
// per minute with bursts up to perMinute.
func NewBucketConfigFromPerMinute(perMinute int) BucketConfig {
	if perMinute <= 0 {
		return BucketConfig{}
	}
	return BucketConfig{
		Capacity:   int64(perMinute),
		RefillRate: float64(perMinute) / 60.0,
	}
}

// RedisLimiter applies one bucket configuration to every key.
type RedisLimiter struct {
	redis  *redis.Client
	bucket BucketConfig
	ttl    time.Duration
	script *redis.Script
	now    func() time.Time
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter returns nil when rdb is nil.
func NewRedisLimiter(rdb *redis.Client, bucket BucketConfig) *RedisLimiter {
	if rdb == nil {
		return nil
	}
	// Idle buckets expire once they would have refilled completely.
	ttl := time.Minute
	if bucket.RefillRate > 0 {
		full := time.Duration(float64(bucket.Capacity) / bucket.RefillRate * float64(time.Second))
		if full > ttl {
			ttl = full
		}
	}
	return &RedisLimiter{
		redis:  rdb,
		bucket: bucket,
		ttl:    ttl,
		script: redis.NewScript(tokenBucketScript),
		now:    time.Now,
	}
}

// Lua numbers come back from Redis as integers, so token counts are scaled by
// 1000 inside the script and retry_after is returned in milliseconds.
const tokenBucketScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1]) * 1000
local refill_rate = tonumber(ARGV[2]) * 1000
local now = tonumber(ARGV[3])
local cost = tonumber(ARGV[4]) * 1000
local ttl_ms = tonumber(ARGV[5])

local tokens = capacity
local last_refill = now

local data = redis.call("HMGET", key, "tokens", "last_refill")
if data[1] ~= false and data[1] ~= nil then
  tokens = tonumber(data[1])
end
if data[2] ~= false and data[2] ~= nil then
  last_refill = tonumber(data[2])
end

local delta = now - last_refill
if delta < 0 then
  delta = 0
end

tokens = math.min(capacity, tokens + delta * refill_rate)

local allowed = 0
local retry_after_ms = 0
if tokens >= cost then
  tokens = tokens - cost
  allowed = 1
elseif refill_rate > 0 then
  retry_after_ms = math.ceil((cost - tokens) / refill_rate * 1000)
end

redis.call("HSET", key, "tokens", tostring(tokens), "last_refill", tostring(now))
redis.call("PEXPIRE", key, ttl_ms)

return { allowed, retry_after_ms }
`

// Allow spends cost tokens from key's bucket. It fails open: Redis errors and
// an unconfigured bucket allow the request.
func (l *RedisLimiter) Allow(ctx context.Context, key string, cost int64) (bool, time.Duration, error) {
	if l == nil || l.redis == nil || l.bucket.Capacity <= 0 || l.bucket.RefillRate <= 0 {
		return true, 0, nil
	}
	if cost <= 0 {
		cost = 1
	}
	nowSec := float64(l.now().UnixNano()) / 1e9

	res, err := l.script.Run(ctx, l.redis, []string{KeyPrefix + key},
		l.bucket.Capacity, l.bucket.RefillRate, nowSec, cost, l.ttl.Milliseconds()).Result()
	if err != nil {
		obsctx.LoggerFromContext(ctx).Error("redis rate limiter script error", slog.String("key", key), slog.Any("error", err))
		return true, 0, err
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) < 2 {
		obsctx.LoggerFromContext(ctx).Error("redis rate limiter unexpected script result", slog.String("key", key), slog.Any("result", res))
		return true, 0, nil
	}
	allowed := toInt64(vals[0]) == 1
	retryAfter := time.Duration(toInt64(vals[1])) * time.Millisecond
	return allowed, retryAfter, nil
}

func toInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		if math.IsNaN(t) {
			return 0
		}
		return int64(t)
	default:
		return 0
	}
}
