package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is a thin read-through JSON cache over Redis. Invalidation works by
// bumping a namespace version that callers fold into their keys, so stale
// entries simply age out under their TTL.
type Cache struct {
	client *redis.Client
	logger *zap.Logger
}

// New connects to Redis and verifies the connection.
func New(addr, password string, db int, logger *zap.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{client: client, logger: logger}, nil
}

// GetJSON loads the value at key into v. The second return is false on a
// cache miss.
func (c *Cache) GetJSON(ctx context.Context, key string, v interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("cache get: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("cache decode: %w", err)
	}
	return true, nil
}

// SetJSON stores v at key with the given TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Version returns the current version of a namespace, starting at 0.
func (c *Cache) Version(ctx context.Context, namespace string) int64 {
	v, err := c.client.Get(ctx, "version:"+namespace).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache version read failed", zap.Error(err))
		}
		return 0
	}
	return v
}

// Bump advances a namespace version, invalidating all keys derived from the
// previous one.
func (c *Cache) Bump(ctx context.Context, namespace string) {
	if err := c.client.Incr(ctx, "version:"+namespace).Err(); err != nil {
		c.logger.Warn("cache version bump failed", zap.Error(err))
	}
}

// Close closes the underlying Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
