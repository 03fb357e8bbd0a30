package tenant

import (
	"context"
	"time"

	"github.com/dmitrymomot/tenancy/pkg/cache"
)

// Cache stores resolved tenants keyed by slug. Cache failures are never
// fatal: a failing Get is a miss and a failing Set is dropped.
type Cache interface {
	Get(ctx context.Context, slug string) (*Tenant, bool)
	Set(ctx context.Context, slug string, t *Tenant, ttl time.Duration)
	Delete(ctx context.Context, slug string)
	Close() error
}

// DefaultCacheSize bounds the in-memory cache.
const DefaultCacheSize = 1000

// MemoryCache is an in-process LRU with per-entry TTL.
type MemoryCache struct {
	lru *cache.LRU[string, *Tenant]
}

// NewMemoryCache falls back to DefaultCacheSize when size is not positive.
func NewMemoryCache(size int) *MemoryCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &MemoryCache{lru: cache.NewLRU[string, *Tenant](size)}
}

func (c *MemoryCache) Get(_ context.Context, slug string) (*Tenant, bool) {
	t, ok := c.lru.Get(slug)
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

func (c *MemoryCache) Set(_ context.Context, slug string, t *Tenant, ttl time.Duration) {
	c.lru.Set(slug, t.Clone(), ttl)
}

func (c *MemoryCache) Delete(_ context.Context, slug string) {
	c.lru.Remove(slug)
}

func (c *MemoryCache) Close() error {
	c.lru.Clear()
	return nil
}

// NoOpCache never stores anything.
type NoOpCache struct{}

func NewNoOpCache() NoOpCache { return NoOpCache{} }

func (NoOpCache) Get(context.Context, string) (*Tenant, bool) { return nil, false }

func (NoOpCache) Set(context.Context, string, *Tenant, time.Duration) {}

func (NoOpCache) Delete(context.Context, string) {}

func (NoOpCache) Close() error { return nil }
