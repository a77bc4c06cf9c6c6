package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a ResponseCache shared by every replica through redis.
type RedisCache struct {
	client    redis.Cmdable
	ttl       time.Duration
	keyPrefix string
}

// NewRedisCache creates a redis-backed cache. Keys are hashed under keyPrefix.
func NewRedisCache(client redis.Cmdable, ttl time.Duration, keyPrefix string) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, keyPrefix: keyPrefix}
}

// Get reads key from redis. A missing key is not an error.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return data, true, nil
}

// Set writes key with the cache TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, c.redisKey(key), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) redisKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return c.keyPrefix + hex.EncodeToString(sum[:])
}
