// Package redis provides the optional Redis-backed query result cache.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"game-market-tracker/internal/query"
)

// QueryCache implements query.Cache on Redis. All failures degrade to
// cache misses; the query service recomputes from the store.
type QueryCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewQueryCache creates a Redis query cache.
func NewQueryCache(client *redis.Client, logger *slog.Logger) *QueryCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryCache{client: client, logger: logger}
}

// Compile-time interface check.
var _ query.Cache = (*QueryCache)(nil)

// Ping checks the connection to the Redis server.
func (c *QueryCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (c *QueryCache) key(key string) string {
	return "query:" + key
}

// Get returns the cached payload for key, or ok=false on miss or any
// cache failure.
func (c *QueryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	payload, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("redis cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return payload, true
}

// Set stores a payload under key with a TTL, best effort.
func (c *QueryCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, c.key(key), payload, ttl).Err(); err != nil {
		c.logger.Warn("redis cache write failed", "key", key, "error", err)
	}
}
