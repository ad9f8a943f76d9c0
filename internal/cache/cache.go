package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/emberhav/pricewatch/internal/logger"
)

// Cache is the short-lived read cache over aggregate views. It never
// propagates backend failures: an unavailable backend degrades reads to
// misses and turns writes and invalidations into logged warnings, so
// the store stays the source of truth.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// New creates a cache with the given default TTL.
func New(client *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

// Get retrieves a cached payload. The second return is false on miss,
// including when the backend is unreachable.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed, treating as miss",
				logger.String("key", key),
				logger.Error(err))
		}
		return nil, false
	}
	return data, true
}

// GetJSON retrieves and unmarshals a cached value into out.
func (c *Cache) GetJSON(ctx context.Context, key string, out any) bool {
	data, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("cache entry corrupt, treating as miss",
			logger.String("key", key),
			logger.Error(err))
		return false
	}
	return true
}

// Set stores a payload under the default TTL. Failures are logged and
// swallowed.
func (c *Cache) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed",
			logger.String("key", key),
			logger.Error(err))
	}
}

// SetJSON marshals value and stores it under the default TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache marshal failed",
			logger.String("key", key),
			logger.Error(err))
		return
	}
	c.Set(ctx, key, data)
}

// Invalidate removes the given keys. Called synchronously on every
// mutation path before the mutation is reported as complete. A failed
// invalidation is logged, not raised: the entry then serves at most one
// stale read until its TTL expires.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache invalidation failed, stale reads possible until TTL",
			logger.Int("keys", len(keys)),
			logger.Error(err))
	}
}
