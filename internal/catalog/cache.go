package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const collectionsCacheKey = "collections"

// ResponseCache stores serialized provider responses for a limited time.
type ResponseCache interface {
	// Get returns the cached value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key.
	Set(ctx context.Context, key string, value []byte) error
}

type memoryEntry struct {
	value     []byte
	fetchedAt time.Time
}

// MemoryCache is a process-local ResponseCache with a fixed time to live.
type MemoryCache struct {
	mu         sync.RWMutex // Protects entries
	entries    map[string]memoryEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewMemoryCache creates a memory cache whose entries expire after ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		ttl:        ttl,
		maxEntries: 1024,
		now:        time.Now,
	}
}

// Get returns a live entry.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.fetchedAt) >= c.ttl {
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set stores value, sweeping expired entries once the cache is full.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if len(c.entries) >= c.maxEntries {
		for k, entry := range c.entries {
			if now.Sub(entry.fetchedAt) >= c.ttl {
				delete(c.entries, k)
			}
		}
		// Still full: start over rather than grow without bound.
		if len(c.entries) >= c.maxEntries {
			c.entries = make(map[string]memoryEntry)
		}
	}
	c.entries[key] = memoryEntry{value: value, fetchedAt: now}
	return nil
}

// CachingProvider decorates a Provider with a response cache. Concurrent misses for
// the same request are collapsed into one upstream call.
type CachingProvider struct {
	next  Provider
	cache ResponseCache
	group singleflight.Group
}

// NewCachingProvider wraps next with cache.
func NewCachingProvider(next Provider, cache ResponseCache) *CachingProvider {
	return &CachingProvider{next: next, cache: cache}
}

// SearchProducts serves the search from cache when possible.
func (p *CachingProvider) SearchProducts(ctx context.Context, req SearchRequest) ([]Product, error) {
	var products []Product
	err := p.cached(ctx, "search:"+req.CacheKey(), &products, func(ctx context.Context) (any, error) {
		return p.next.SearchProducts(ctx, req)
	})
	return products, err
}

// ListCollections serves the collection list from cache when possible.
func (p *CachingProvider) ListCollections(ctx context.Context) ([]Collection, error) {
	var collections []Collection
	err := p.cached(ctx, collectionsCacheKey, &collections, func(ctx context.Context) (any, error) {
		return p.next.ListCollections(ctx)
	})
	return collections, err
}

// GetSource returns the source of the wrapped provider.
func (p *CachingProvider) GetSource() string {
	return p.next.GetSource()
}

// cached serves key from the cache or loads it once for all concurrent callers.
// The shared load runs detached from any single caller's cancellation; each caller
// still returns as soon as its own context is done.
func (p *CachingProvider) cached(
	ctx context.Context, key string, out any, load func(ctx context.Context) (any, error),
) error {
	data, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("Response cache read failed", "key", key, "error", err)
	}
	if ok {
		if err := json.Unmarshal(data, out); err == nil {
			return nil
		}
		slog.Warn("Discarding undecodable cache entry", "key", key)
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := p.group.DoChan(key, func() (any, error) {
		result, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(result)
		if err != nil {
			return nil, err
		}
		if err := p.cache.Set(loadCtx, key, encoded); err != nil {
			slog.Warn("Response cache write failed", "key", key, "error", err)
		}
		return encoded, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), out)
	}
}
