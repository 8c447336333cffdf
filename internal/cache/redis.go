package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Cache[T] backed by Redis, storing values as JSON with a
// TTL. It lets the API server and the worker share warm snapshots. Cache
// misses and marshalling problems degrade to a miss; Redis being down never
// fails a request.
type RedisCache[T any] struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects a cache to the Redis instance at addr.
func NewRedisCache[T any](addr string, ttl time.Duration) *RedisCache[T] {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache[T]{client: rdb, ttl: ttl}
}

// Get retrieves a value from the cache
func (c *RedisCache[T]) Get(key string) (T, bool) {
	var zero T

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return zero, false
	}

	var data T
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		slog.Warn("Discarding undecodable cache entry", "cache_key", key, "error", err)
		c.Delete(key)
		return zero, false
	}
	return data, true
}

// Set stores a value in the cache
func (c *RedisCache[T]) Set(key string, data T) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Warn("Failed to marshal cache entry", "cache_key", key, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.client.Set(ctx, key, body, c.ttl).Err(); err != nil {
		slog.Warn("Failed to store cache entry", "cache_key", key, "error", err)
	}
}

// Delete removes a key from the cache
func (c *RedisCache[T]) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.client.Del(ctx, key).Err(); err != nil {
		slog.Warn("Failed to delete cache entry", "cache_key", key, "error", err)
	}
}

// Size returns -1: Redis does not expose a cheap per-prefix count and the
// value is only used for diagnostics.
func (c *RedisCache[T]) Size() int {
	return -1
}

// Close releases the underlying Redis connection.
func (c *RedisCache[T]) Close() error {
	return c.client.Close()
}
