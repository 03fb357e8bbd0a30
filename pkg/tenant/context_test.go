package tenant_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenancy/pkg/tenant"
)

func TestRequestContext(t *testing.T) {
	t.Parallel()

	t.Run("empty context", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		_, ok := tenant.IDFromContext(ctx)
		assert.False(t, ok)
		assert.Empty(t, tenant.SlugFromContext(ctx))
		assert.Empty(t, tenant.SettingsFromContext(ctx))
		assert.Equal(t, tenant.StringValue("x"), tenant.Setting(ctx, "theme", tenant.StringValue("x")))
		assert.Panics(t, func() { tenant.MustIDFromContext(ctx) })
	})

	t.Run("set and clear", func(t *testing.T) {
		t.Parallel()

		ctx, rc := tenant.NewRequestContext(context.Background())
		rc.Set(newTenant(42, "acme", tenant.StatusActive))

		id, ok := tenant.IDFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, int64(42), id)
		assert.Equal(t, "acme", tenant.SlugFromContext(ctx))
		assert.Equal(t, tenant.StringValue("acme-theme"), tenant.Setting(ctx, "theme", tenant.Value{}))

		rc.Clear()
		rc.Clear()
		_, ok = tenant.IDFromContext(ctx)
		assert.False(t, ok)
	})

	t.Run("info is a copy", func(t *testing.T) {
		t.Parallel()

		ctx := tenant.WithTenant(context.Background(), newTenant(1, "acme", tenant.StatusActive))
		info, ok := tenant.FromContext(ctx)
		require.True(t, ok)
		info.Settings["theme"] = tenant.StringValue("changed")

		assert.Equal(t, "acme-theme", tenant.SettingsFromContext(ctx).GetString("theme", ""))
	})

	t.Run("ensure reuses existing", func(t *testing.T) {
		t.Parallel()

		ctx, rc := tenant.NewRequestContext(context.Background())
		ctx2, rc2 := tenant.EnsureRequestContext(ctx)
		assert.Same(t, rc, rc2)
		assert.Equal(t, ctx, ctx2)
	})

	t.Run("logger extractors", func(t *testing.T) {
		t.Parallel()

		ctx := tenant.WithTenant(context.Background(), newTenant(9, "globex", tenant.StatusActive))

		attr, ok := tenant.LoggerExtractor()(ctx)
		require.True(t, ok)
		assert.Equal(t, "tenant_id", attr.Key)
		assert.Equal(t, int64(9), attr.Value.Int64())

		attr, ok = tenant.SlugLoggerExtractor()(ctx)
		require.True(t, ok)
		assert.Equal(t, "globex", attr.Value.String())

		_, ok = tenant.LoggerExtractor()(context.Background())
		assert.False(t, ok)
	})
}
