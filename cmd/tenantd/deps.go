package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/tenancy/pkg/httpserver"
	"github.com/dmitrymomot/tenancy/pkg/pg"
	"github.com/dmitrymomot/tenancy/pkg/redis"
	"github.com/dmitrymomot/tenancy/pkg/tenant"
)

// database bundles the pgx pool and the database/sql handle built on it.
type database struct {
	pool *pgxpool.Pool
	db   *sql.DB
}

func openDatabase(ctx context.Context, cfg appConfig, log *slog.Logger) (*database, error) {
	pool, err := pg.Connect(ctx, cfg.PG, log)
	if err != nil {
		return nil, err
	}
	return &database{pool: pool, db: pg.OpenDB(pool)}, nil
}

func (d *database) Close() {
	_ = d.db.Close()
	d.pool.Close()
}

// openCache builds the backend named by TENANT_CACHE. The returned checks
// cover external backends only.
func openCache(ctx context.Context, cfg appConfig, log *slog.Logger) (tenant.Cache, []httpserver.Check, error) {
	c, ok, err := cfg.Tenant.LocalCache()
	if err != nil {
		return nil, nil, err
	}
	if ok {
		return c, nil, nil
	}

	client, err := redis.Connect(ctx, cfg.Redis, log)
	if err != nil {
		return nil, nil, fmt.Errorf("tenant cache: %w", err)
	}
	rc := tenant.NewRedisCache(client,
		tenant.WithRedisPrefix(cfg.Redis.KeyPrefix),
		tenant.WithRedisLogger(log),
	)
	return closingCache{Cache: rc, close: client.Close},
		[]httpserver.Check{{Name: "redis", Run: redis.Healthcheck(client)}}, nil
}

// closingCache closes the redis client together with the cache.
type closingCache struct {
	tenant.Cache
	close func() error
}

func (c closingCache) Close() error {
	if err := c.Cache.Close(); err != nil {
		return err
	}
	return c.close()
}
