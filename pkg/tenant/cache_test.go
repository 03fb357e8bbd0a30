package tenant_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenancy/pkg/tenant"
)

func exerciseCache(t *testing.T, c tenant.Cache, settle func()) {
	t.Helper()
	ctx := context.Background()

	_, ok := c.Get(ctx, "acme")
	assert.False(t, ok)

	c.Set(ctx, "acme", newTenant(1, "acme", tenant.StatusActive), time.Minute)
	settle()

	got, ok := c.Get(ctx, "acme")
	require.True(t, ok)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "acme-theme", got.Settings.GetString("theme", ""))

	c.Delete(ctx, "acme")
	settle()

	_, ok = c.Get(ctx, "acme")
	assert.False(t, ok)
}

func TestMemoryCache(t *testing.T) {
	t.Parallel()

	c := tenant.NewMemoryCache(0)
	exerciseCache(t, c, func() {})
	assert.NoError(t, c.Close())
}

func TestRistrettoCache(t *testing.T) {
	t.Parallel()

	c, err := tenant.NewRistrettoCache(100)
	require.NoError(t, err)
	defer c.Close()

	exerciseCache(t, c, c.Wait)
}

func TestNoOpCache(t *testing.T) {
	t.Parallel()

	c := tenant.NewNoOpCache()
	c.Set(context.Background(), "acme", newTenant(1, "acme", tenant.StatusActive), time.Minute)
	_, ok := c.Get(context.Background(), "acme")
	assert.False(t, ok)
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	require.NoError(t, client.Ping(context.Background()).Err())

	c := tenant.NewRedisCache(client, tenant.WithRedisPrefix("test:tenant:"+t.Name()+":"))
	exerciseCache(t, c, func() {})
}

func TestConfig(t *testing.T) {
	t.Parallel()

	cfg := tenant.Config{Mode: "header", Header: "X-Org", Cache: "ristretto", CacheSize: 10}
	id, err := cfg.Identifier()
	require.NoError(t, err)
	require.NotNil(t, id)

	c, ok, err := cfg.LocalCache()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.IsType(t, &tenant.RistrettoCache{}, c)
	require.NoError(t, c.Close())

	_, ok, err = tenant.Config{Cache: "redis"}.LocalCache()
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = tenant.Config{Cache: "memcached"}.LocalCache()
	assert.Error(t, err)

	_, err = tenant.Config{Mode: "cookie"}.Identifier()
	assert.ErrorIs(t, err, tenant.ErrInvalidMode)
}
