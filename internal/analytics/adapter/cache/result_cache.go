package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"restaurant-analytics/internal/analytics/config"
)

const keyPrefix = "stats:"

// NewRedisClient creates a Redis client for the aggregation result cache.
func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// ResultCache stores JSON-encoded aggregation result sets with a TTL so the
// notebook can poll the stats API without re-running pipelines on every call.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache wraps a Redis client as a result cache.
func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

// Get loads a cached result set into dest. The second return value is false
// on a cache miss.
func (c *ResultCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache read for %q failed: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache entry for %q is not valid JSON: %w", key, err)
	}
	return true, nil
}

// Set stores a result set under key with the configured TTL.
func (c *ResultCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry for %q: %w", key, err)
	}

	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache write for %q failed: %w", key, err)
	}
	return nil
}
