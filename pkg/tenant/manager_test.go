package tenant_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenancy/pkg/tenant"
)

func TestManager_Create(t *testing.T) {
	t.Parallel()

	t.Run("derives unique slugs", func(t *testing.T) {
		t.Parallel()

		m := tenant.NewManager(tenant.NewMemoryStore())
		ctx := context.Background()

		first, err := m.Create(ctx, tenant.CreateParams{Name: "Acme Inc"})
		require.NoError(t, err)
		assert.Equal(t, "acme-inc", first.Slug)
		assert.Equal(t, tenant.StatusActive, first.Status)
		assert.NotZero(t, first.ID)

		second, err := m.Create(ctx, tenant.CreateParams{Name: "Acme Inc."})
		require.NoError(t, err)
		assert.Equal(t, "acme-inc-1", second.Slug)

		third, err := m.Create(ctx, tenant.CreateParams{Name: "ACME inc"})
		require.NoError(t, err)
		assert.Equal(t, "acme-inc-2", third.Slug)
	})

	t.Run("applies default settings", func(t *testing.T) {
		t.Parallel()

		m := tenant.NewManager(tenant.NewMemoryStore())
		got, err := m.Create(context.Background(), tenant.CreateParams{
			Name:     "Globex",
			Settings: tenant.Settings{"theme": tenant.StringValue("dark")},
		})
		require.NoError(t, err)
		assert.Equal(t, "dark", got.Settings.GetString("theme", ""))
		assert.Equal(t, "UTC", got.Settings.GetString("timezone", ""))
		assert.Equal(t, "USD", got.Settings.GetString("currency", ""))
	})

	t.Run("explicit slug conflicts", func(t *testing.T) {
		t.Parallel()

		m := tenant.NewManager(tenant.NewMemoryStore(newTenant(1, "acme", tenant.StatusActive)))
		_, err := m.Create(context.Background(), tenant.CreateParams{Name: "Acme Two", Slug: "ACME"})
		assert.ErrorIs(t, err, tenant.ErrSlugTaken)
	})

	t.Run("domain conflicts", func(t *testing.T) {
		t.Parallel()

		m := tenant.NewManager(tenant.NewMemoryStore())
		ctx := context.Background()
		_, err := m.Create(ctx, tenant.CreateParams{Name: "Acme", Domain: "acme.test"})
		require.NoError(t, err)

		_, err = m.Create(ctx, tenant.CreateParams{Name: "Other", Domain: "ACME.test"})
		assert.ErrorIs(t, err, tenant.ErrDomainTaken)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()

		m := tenant.NewManager(tenant.NewMemoryStore())
		tests := []struct {
			name  string
			p     tenant.CreateParams
			field string
		}{
			{"missing name", tenant.CreateParams{}, "name"},
			{"short name", tenant.CreateParams{Name: "ab"}, "name"},
			{"long name", tenant.CreateParams{Name: strings.Repeat("a", 101)}, "name"},
			{"bad slug", tenant.CreateParams{Name: "Acme", Slug: "-acme"}, "slug"},
			{"short slug", tenant.CreateParams{Name: "Acme", Slug: "ac"}, "slug"},
			{"bad status", tenant.CreateParams{Name: "Acme", Status: "deleted"}, "status"},
			{"bad domain", tenant.CreateParams{Name: "Acme", Domain: "not a domain"}, "domain"},
			{"underivable slug", tenant.CreateParams{Name: "!!!"}, "slug"},
		}

		for _, tt := range tests {
			_, err := m.Create(context.Background(), tt.p)
			require.ErrorIs(t, err, tenant.ErrValidation, tt.name)

			var verr *tenant.ValidationError
			require.ErrorAs(t, err, &verr, tt.name)
			assert.Contains(t, verr.Fields, tt.field, tt.name)
		}
	})
}

func TestManager_Status(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := tenant.NewMemoryStore(newTenant(1, "acme", tenant.StatusActive))
	cache := tenant.NewMemoryCache(10)
	resolver := tenant.NewResolver(tenant.HeaderIdentifier(""), store, tenant.WithCache(cache))
	m := tenant.NewManager(store, tenant.WithManagerCache(cache))

	got, err := resolver.Lookup(ctx, "acme")
	require.NoError(t, err)
	require.True(t, got.IsActive())

	require.NoError(t, m.Suspend(ctx, 1))
	got, err = resolver.Lookup(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusSuspended, got.Status)

	require.NoError(t, m.Deactivate(ctx, 1))
	require.NoError(t, m.Activate(ctx, 1))
	got, err = resolver.Lookup(ctx, "acme")
	require.NoError(t, err)
	assert.True(t, got.IsActive())

	assert.ErrorIs(t, m.SetStatus(ctx, 1, "archived"), tenant.ErrInvalidStatus)
	assert.ErrorIs(t, m.Activate(ctx, 404), tenant.ErrTenantNotFound)

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, tenant.Stats{Total: 1, Active: 1}, stats)
}

func TestManager_Settings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := tenant.NewManager(tenant.NewMemoryStore(newTenant(1, "acme", tenant.StatusActive)))

	merged, err := m.UpdateSettings(ctx, 1, tenant.Settings{"seats": tenant.NumberValue(5)})
	require.NoError(t, err)
	assert.Equal(t, "acme-theme", merged.GetString("theme", ""))
	assert.InDelta(t, 5.0, merged.GetNumber("seats", 0), 0)

	v, err := m.Setting(ctx, 1, "seats", tenant.NumberValue(0))
	require.NoError(t, err)
	assert.Equal(t, tenant.NumberValue(5), v)

	v, err = m.Setting(ctx, 1, "missing", tenant.StringValue("fallback"))
	require.NoError(t, err)
	assert.Equal(t, tenant.StringValue("fallback"), v)
}

func TestManager_Update(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := tenant.NewMemoryStore(
		newTenant(1, "acme", tenant.StatusActive),
		newTenant(2, "globex", tenant.StatusActive),
	)
	m := tenant.NewManager(store)

	name := "Acme Corporation"
	got, err := m.Update(ctx, 1, tenant.UpdateParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.Equal(t, "acme", got.Slug)

	taken := "globex"
	_, err = m.Update(ctx, 1, tenant.UpdateParams{Slug: &taken})
	assert.ErrorIs(t, err, tenant.ErrSlugTaken)

	renamed := "acme-corp"
	got, err = m.Update(ctx, 1, tenant.UpdateParams{Slug: &renamed})
	require.NoError(t, err)
	assert.Equal(t, "acme-corp", got.Slug)
}

func TestManager_UpdateNormalizes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	globex := newTenant(2, "globex", tenant.StatusActive)
	globex.Domain = "globex.test"
	store := &updateCountingStore{ProvisioningStore: tenant.NewMemoryStore(
		newTenant(1, "acme", tenant.StatusActive), globex)}
	m := tenant.NewManager(store)

	name, s, domain := "  Acme Two ", " ACME-Two ", " Acme.Test "
	got, err := m.Update(ctx, 1, tenant.UpdateParams{Name: &name, Slug: &s, Domain: &domain})
	require.NoError(t, err)
	assert.Equal(t, "Acme Two", got.Name)
	assert.Equal(t, "acme-two", got.Slug)
	assert.Equal(t, "acme.test", got.Domain)

	_, err = m.GetBySlug(ctx, "acme-two")
	require.NoError(t, err)

	same := "ACME.test"
	_, err = m.Update(ctx, 1, tenant.UpdateParams{Domain: &same})
	require.NoError(t, err)

	updates := store.updates.Load()
	taken := " GLOBEX.test"
	_, err = m.Update(ctx, 1, tenant.UpdateParams{Domain: &taken})
	assert.ErrorIs(t, err, tenant.ErrDomainTaken)
	assert.Equal(t, updates, store.updates.Load())

	upper := "GLOBEX"
	_, err = m.Update(ctx, 1, tenant.UpdateParams{Slug: &upper})
	assert.ErrorIs(t, err, tenant.ErrSlugTaken)
	assert.Equal(t, updates, store.updates.Load())

	cleared := ""
	got, err = m.Update(ctx, 1, tenant.UpdateParams{Domain: &cleared})
	require.NoError(t, err)
	assert.Empty(t, got.Domain)
}

func TestManager_InvalidatesThroughResolver(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := tenant.NewMemoryStore(newTenant(1, "acme", tenant.StatusActive))
	store := newBlockingStore(mem)
	cache := tenant.NewMemoryCache(10)
	resolver := tenant.NewResolver(tenant.HeaderIdentifier(""), store, tenant.WithCache(cache))
	m := tenant.NewManager(mem, tenant.WithManagerResolver(resolver))

	done := make(chan error, 1)
	go func() {
		_, err := resolver.Lookup(ctx, "acme")
		done <- err
	}()
	<-store.entered

	require.NoError(t, m.Suspend(ctx, 1))
	close(store.release)
	require.NoError(t, <-done)

	got, err := resolver.Lookup(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusSuspended, got.Status)
}

func TestManager_List(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := tenant.NewManager(tenant.NewMemoryStore(
		newTenant(1, "acme", tenant.StatusActive),
		newTenant(2, "globex", tenant.StatusActive),
		newTenant(3, "initech", tenant.StatusSuspended),
	))

	active, err := m.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "acme", active[0].Slug)

	found, err := m.List(ctx, tenant.ListFilter{Search: "INIT"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(3), found[0].ID)

	page, err := m.List(ctx, tenant.ListFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "globex", page[0].Slug)
}
