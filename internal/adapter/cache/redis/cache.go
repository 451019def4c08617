// Package redis stores parsed resume profiles in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
)

// KeyPrefix namespaces resume profile entries.
const KeyPrefix = "ai-interviewer:resume:"

// DefaultTTL is used when a non-positive TTL is configured.
const DefaultTTL = 24 * time.Hour

// ResumeCache implements domain.ResumeCache on a Redis client.
type ResumeCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

var _ domain.ResumeCache = (*ResumeCache)(nil)

// NewResumeCache returns nil when rdb is nil so callers can skip caching.
func NewResumeCache(rdb *goredis.Client, ttl time.Duration) *ResumeCache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResumeCache{rdb: rdb, ttl: ttl}
}

// NewClient parses a redis:// URL into a client.
func NewClient(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("op=redis.NewClient: %w: %v", domain.ErrInvalidArgument, err)
	}
	return goredis.NewClient(opts), nil
}

// Get returns the cached profile for key. A miss is (zero, false, nil).
func (c *ResumeCache) Get(ctx context.Context, key string) (domain.ResumeProfile, bool, error) {
	if c == nil {
		return domain.ResumeProfile{}, false, nil
	}
	b, err := c.rdb.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.ResumeProfile{}, false, nil
	}
	if err != nil {
		return domain.ResumeProfile{}, false, fmt.Errorf("op=redis.ResumeCache.Get: %w", err)
	}
	var p domain.ResumeProfile
	if err := json.Unmarshal(b, &p); err != nil {
		// a corrupt entry is treated as a miss and overwritten on the next Set
		return domain.ResumeProfile{}, false, nil
	}
	return p, true, nil
}

// Set stores p under key with the configured TTL.
func (c *ResumeCache) Set(ctx context.Context, key string, p domain.ResumeProfile) error {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("op=redis.ResumeCache.Set: %w", err)
	}
	if err := c.rdb.Set(ctx, KeyPrefix+key, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("op=redis.ResumeCache.Set: %w", err)
	}
	return nil
}
