package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/tenancy/pkg/logger"
)

// DefaultRedisPrefix namespaces tenant cache keys.
const DefaultRedisPrefix = "tenant:"

// RedisCache shares resolved tenants between instances as JSON documents.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

// RedisCacheOption configures a RedisCache.
type RedisCacheOption func(*RedisCache)

func WithRedisPrefix(prefix string) RedisCacheOption {
	return func(c *RedisCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

func WithRedisLogger(l *slog.Logger) RedisCacheOption {
	return func(c *RedisCache) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewRedisCache(client redis.UniversalClient, opts ...RedisCacheOption) *RedisCache {
	c := &RedisCache{
		client: client,
		prefix: DefaultRedisPrefix,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCache) Get(ctx context.Context, slug string) (*Tenant, bool) {
	data, err := c.client.Get(ctx, c.prefix+slug).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "tenant cache read failed",
				logger.Component("tenant.cache"), logger.TenantSlug(slug), logger.Error(err))
		}
		return nil, false
	}

	var t Tenant
	if err := json.Unmarshal(data, &t); err != nil {
		c.logger.WarnContext(ctx, "tenant cache entry corrupted",
			logger.Component("tenant.cache"), logger.TenantSlug(slug), logger.Error(err))
		c.Delete(ctx, slug)
		return nil, false
	}
	return &t, true
}

func (c *RedisCache) Set(ctx context.Context, slug string, t *Tenant, ttl time.Duration) {
	data, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.prefix+slug, data, max(ttl, 0)).Err(); err != nil {
		c.logger.WarnContext(ctx, "tenant cache write failed",
			logger.Component("tenant.cache"), logger.TenantSlug(slug), logger.Error(err))
	}
}

func (c *RedisCache) Delete(ctx context.Context, slug string) {
	if err := c.client.Del(ctx, c.prefix+slug).Err(); err != nil {
		c.logger.WarnContext(ctx, "tenant cache delete failed",
			logger.Component("tenant.cache"), logger.TenantSlug(slug), logger.Error(err))
	}
}

// Close is a no-op; the client is owned by the caller.
func (c *RedisCache) Close() error { return nil }
