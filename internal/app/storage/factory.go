// Package storage provides factory functions for creating the catalog data source.
// A factory builds the catalog provider for the configured provider type and
// wraps it with the configured response cache, so the provider and the store
// backing its cache are created, and released, as a family.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/stacklok/storefront-catalog/internal/catalog"
	"github.com/stacklok/storefront-catalog/internal/config"
)

//go:generate mockgen -destination=mocks/mock_factory.go -package=mocks -source=factory.go Factory

// Factory creates the catalog provider serving the storefront.
type Factory interface {
	// CreateProvider creates the catalog provider, wrapped with the response
	// cache when one is configured.
	CreateProvider(ctx context.Context) (catalog.Provider, error)

	// Cleanup releases resources held by the factory, such as the redis
	// connection pool. Safe to call when CreateProvider was never called.
	Cleanup()
}

// NewStorageFactory creates a factory based on the configured provider type.
func NewStorageFactory(cfg *config.Config) (Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch cfg.Provider.Type {
	case config.ProviderTypeAPI:
		return NewAPIFactory(cfg)
	case config.ProviderTypeFile:
		return NewFileFactory(cfg)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Provider.Type)
	}
}

// cacheLayer owns the response cache shared by both factory kinds.
type cacheLayer struct {
	cfg   *config.CacheConfig
	redis *redis.Client
}

// wrap returns next behind the configured response cache. The redis backend
// pings the server so a wrong address fails at startup.
func (c *cacheLayer) wrap(ctx context.Context, next catalog.Provider) (catalog.Provider, error) {
	switch backend := c.cfg.GetBackend(); backend {
	case config.CacheBackendNone:
		return next, nil
	case config.CacheBackendMemory:
		slog.Info("Using in-memory response cache", "ttl", c.cfg.GetTTL())
		return catalog.NewCachingProvider(next, catalog.NewMemoryCache(c.cfg.GetTTL())), nil
	case config.CacheBackendRedis:
		client, err := newRedisClient(ctx, c.cfg.Redis)
		if err != nil {
			return nil, err
		}
		c.redis = client
		slog.Info("Using redis response cache",
			"address", c.cfg.Redis.Address,
			"db", c.cfg.Redis.DB,
			"ttl", c.cfg.GetTTL())
		cache := catalog.NewRedisCache(client, c.cfg.GetTTL(), c.cfg.Redis.GetKeyPrefix())
		return catalog.NewCachingProvider(next, cache), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", backend)
	}
}

func (c *cacheLayer) close() {
	if c.redis == nil {
		return
	}
	if err := c.redis.Close(); err != nil {
		slog.Warn("Failed to close redis client", "error", err)
	}
	c.redis = nil
}

func newRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	if cfg == nil || cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	password, err := cfg.GetPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to read redis password: %w", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		DB:       cfg.DB,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Address, err)
	}
	return client, nil
}
