package tenant

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// RistrettoCache is a concurrent admission-controlled cache for hot
// multi-core deployments. Each tenant costs 1, so maxItems bounds the count.
type RistrettoCache struct {
	cache *ristretto.Cache[string, *Tenant]
}

func NewRistrettoCache(maxItems int64) (*RistrettoCache, error) {
	if maxItems <= 0 {
		maxItems = DefaultCacheSize
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, *Tenant]{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("tenant: create ristretto cache: %w", err)
	}
	return &RistrettoCache{cache: c}, nil
}

func (c *RistrettoCache) Get(_ context.Context, slug string) (*Tenant, bool) {
	t, ok := c.cache.Get(slug)
	if !ok || t == nil {
		return nil, false
	}
	return t.Clone(), true
}

func (c *RistrettoCache) Set(_ context.Context, slug string, t *Tenant, ttl time.Duration) {
	c.cache.SetWithTTL(slug, t.Clone(), 1, ttl)
}

func (c *RistrettoCache) Delete(_ context.Context, slug string) {
	c.cache.Del(slug)
}

// Wait blocks until buffered writes are applied.
func (c *RistrettoCache) Wait() {
	c.cache.Wait()
}

func (c *RistrettoCache) Close() error {
	c.cache.Close()
	return nil
}
