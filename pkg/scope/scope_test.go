package scope_test

import (
	"context"
	"database/sql"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenancy/pkg/scope"
	"github.com/dmitrymomot/tenancy/pkg/tenant"
)

const (
	acmeID   int64 = 1
	globexID int64 = 2
)

func tenantCtx(id int64, slug string) context.Context {
	return tenant.WithTenant(context.Background(), &tenant.Tenant{ID: id, Slug: slug, Status: tenant.StatusActive})
}

// seedUsers stores two acme users and one globex user.
func seedUsers(t *testing.T) (*scope.BaseRepository, *scope.MemoryExecutor) {
	t.Helper()

	exec := scope.NewMemoryExecutor()
	repo, err := scope.NewRepository(exec, scope.Model{Table: "users"})
	require.NoError(t, err)

	ctx := context.Background()
	for _, r := range []scope.Row{
		{"name": "alice", "tenant_id": acmeID},
		{"name": "bob", "tenant_id": acmeID},
		{"name": "carol", "tenant_id": globexID},
	} {
		_, err := repo.Insert(ctx, r)
		require.NoError(t, err)
	}
	return repo, exec
}

func names(rows []scope.Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r["name"].(string))
	}
	return out
}

func TestGuard_Reads(t *testing.T) {
	t.Parallel()

	repo, _ := seedUsers(t)
	guard := scope.NewGuard(repo)
	acme := tenantCtx(acmeID, "acme")
	globex := tenantCtx(globexID, "globex")

	t.Run("find by id stays inside tenant", func(t *testing.T) {
		t.Parallel()

		row, err := guard.Find(acme, 1)
		require.NoError(t, err)
		assert.Equal(t, "alice", row["name"])

		_, err = guard.Find(globex, 1)
		assert.ErrorIs(t, err, scope.ErrNotFound)
	})

	t.Run("filtered find", func(t *testing.T) {
		t.Parallel()

		rows, err := guard.FindWhere(acme, guard.Query().OrderBy("name", true))
		require.NoError(t, err)
		assert.Equal(t, []string{"bob", "alice"}, names(rows))

		rows, err = guard.FindWhere(globex, scope.Query{})
		require.NoError(t, err)
		assert.Equal(t, []string{"carol"}, names(rows))
	})

	t.Run("count and paginate", func(t *testing.T) {
		t.Parallel()

		n, err := guard.Count(acme, guard.Query())
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		page, err := guard.Paginate(acme, guard.Query().OrderBy("name", false), 2, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
		assert.Equal(t, 2, page.Pages)
		assert.Equal(t, []string{"bob"}, names(page.Items))

		for _, tc := range []struct{ page, perPage int }{
			{3, 1},
			{math.MaxInt, 2},
			{math.MaxInt / 2, 4},
			{2, math.MaxInt},
		} {
			past, err := guard.Paginate(acme, guard.Query(), tc.page, tc.perPage)
			require.NoError(t, err)
			assert.Empty(t, past.Items, "page %d per %d", tc.page, tc.perPage)
			assert.Equal(t, tc.page, past.Page)
			assert.Equal(t, int64(2), past.Total)
		}

		whole, err := guard.Paginate(acme, guard.Query(), 1, math.MaxInt)
		require.NoError(t, err)
		assert.Equal(t, 1, whole.Pages)
		assert.Len(t, whole.Items, 2)

		_, err = guard.Paginate(acme, guard.Query(), 0, 10)
		assert.ErrorIs(t, err, scope.ErrInvalidPage)
	})

	t.Run("scoping twice equals scoping once", func(t *testing.T) {
		t.Parallel()

		once, err := guard.Scope(acme, guard.Query())
		require.NoError(t, err)
		twice, err := guard.Scope(acme, once)
		require.NoError(t, err)

		assert.True(t, twice.ScopeApplied())
		assert.Equal(t, once.Conditions(), twice.Conditions())
		assert.Len(t, twice.Conditions(), 1)

		a, err := guard.FindWhere(acme, once)
		require.NoError(t, err)
		b, err := guard.FindWhere(acme, twice)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("query scoped to another tenant is rejected", func(t *testing.T) {
		t.Parallel()

		strict := scope.NewGuard(repo, scope.Strict())
		for _, g := range []*scope.Guard{guard, strict} {
			rows, err := g.FindWhere(acme, g.Query().ScopeTo("tenant_id", globexID))
			assert.ErrorIs(t, err, scope.ErrScopeMismatch)
			assert.Empty(t, rows)

			_, err = g.Count(acme, g.Query().ScopeTo("owner_id", acmeID))
			assert.ErrorIs(t, err, scope.ErrScopeMismatch)

			n, err := g.Delete(acme, g.Query().ScopeTo("tenant_id", globexID), nil)
			assert.ErrorIs(t, err, scope.ErrScopeMismatch)
			assert.Zero(t, n)
		}

		left, err := repo.Count(context.Background(), scope.Query{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), left)
	})

	t.Run("query scoped to own tenant passes", func(t *testing.T) {
		t.Parallel()

		rows, err := guard.FindWhere(globex, guard.Query().ScopeTo("tenant_id", globexID))
		require.NoError(t, err)
		assert.Equal(t, []string{"carol"}, names(rows))
	})

	t.Run("without scope sees every tenant", func(t *testing.T) {
		t.Parallel()

		rows, err := guard.WithoutScope().FindWhere(acme, scope.Query{})
		require.NoError(t, err)

		tenants := map[any]bool{}
		for _, r := range rows {
			tenants[r["tenant_id"]] = true
		}
		assert.Len(t, rows, 3)
		assert.Len(t, tenants, 2)
	})

	t.Run("no tenant runs unscoped by default", func(t *testing.T) {
		t.Parallel()

		rows, err := guard.FindWhere(context.Background(), scope.Query{})
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("strict guard rejects missing tenant", func(t *testing.T) {
		t.Parallel()

		strict := scope.NewGuard(repo, scope.Strict())
		assert.True(t, strict.IsStrict())

		_, err := strict.FindWhere(context.Background(), scope.Query{})
		assert.ErrorIs(t, err, scope.ErrNoTenant)
		_, err = strict.Insert(context.Background(), scope.Row{"name": "eve"})
		assert.ErrorIs(t, err, scope.ErrNoTenant)
		_, err = strict.Count(tenant.WithTenant(context.Background(), &tenant.Tenant{ID: 0}), scope.Query{})
		assert.ErrorIs(t, err, scope.ErrNoTenant)
	})
}

func TestGuard_Writes(t *testing.T) {
	t.Parallel()

	t.Run("insert stamps tenant", func(t *testing.T) {
		t.Parallel()

		repo, _ := seedUsers(t)
		guard := scope.NewGuard(repo)
		acme := tenantCtx(acmeID, "acme")

		id, err := guard.Insert(acme, scope.Row{"name": "dave"})
		require.NoError(t, err)

		row, err := repo.Find(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, acmeID, row["tenant_id"])
	})

	t.Run("insert keeps explicit tenant", func(t *testing.T) {
		t.Parallel()

		repo, _ := seedUsers(t)
		guard := scope.NewGuard(repo)

		rec := scope.Row{"name": "erin", "tenant_id": globexID}
		id, err := guard.Insert(tenantCtx(acmeID, "acme"), rec)
		require.NoError(t, err)

		row, err := repo.Find(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, globexID, row["tenant_id"])
		assert.NotContains(t, rec, "id")
	})

	t.Run("insert stamps nil or zero tenant", func(t *testing.T) {
		t.Parallel()

		var nilID *int64
		zero := int64(0)
		for name, v := range map[string]any{
			"nil":          nil,
			"zero":         int64(0),
			"zero int":     0,
			"nil pointer":  nilID,
			"zero pointer": &zero,
			"null":         sql.NullInt64{},
		} {
			repo, _ := seedUsers(t)
			guard := scope.NewGuard(repo, scope.Strict())

			id, err := guard.Insert(tenantCtx(acmeID, "acme"), scope.Row{"name": "dave", "tenant_id": v})
			require.NoError(t, err, name)

			row, err := repo.Find(context.Background(), id)
			require.NoError(t, err, name)
			assert.Equal(t, acmeID, row["tenant_id"], name)
		}
	})

	t.Run("update cannot reach other tenants", func(t *testing.T) {
		t.Parallel()

		repo, _ := seedUsers(t)
		guard := scope.NewGuard(repo)

		n, err := guard.Update(tenantCtx(globexID, "globex"), scope.Query{}, 1, scope.Row{"name": "mallory"})
		require.NoError(t, err)
		assert.Zero(t, n)

		row, err := repo.Find(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "alice", row["name"])
	})

	t.Run("update cannot move rows", func(t *testing.T) {
		t.Parallel()

		repo, _ := seedUsers(t)
		guard := scope.NewGuard(repo)

		n, err := guard.Update(tenantCtx(acmeID, "acme"), scope.Query{}, 1,
			scope.Row{"name": "alice2", "tenant_id": globexID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		row, err := repo.Find(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "alice2", row["name"])
		assert.Equal(t, acmeID, row["tenant_id"])
	})

	t.Run("delete is scoped", func(t *testing.T) {
		t.Parallel()

		repo, _ := seedUsers(t)
		guard := scope.NewGuard(repo)

		n, err := guard.Delete(tenantCtx(acmeID, "acme"), scope.Query{}, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		left, err := repo.Count(context.Background(), scope.Query{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), left)
	})
}

func TestGuard_GlobalModel(t *testing.T) {
	t.Parallel()

	exec := scope.NewMemoryExecutor()
	repo, err := scope.NewRepository(exec, scope.Model{Table: "plans", Global: true})
	require.NoError(t, err)

	_, err = repo.Insert(context.Background(), scope.Row{"name": "pro"})
	require.NoError(t, err)

	guard := scope.NewGuard(repo, scope.Strict())
	assert.False(t, guard.Enabled())

	rows, err := guard.FindWhere(context.Background(), scope.Query{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	id, err := guard.Insert(tenantCtx(acmeID, "acme"), scope.Row{"name": "team"})
	require.NoError(t, err)
	row, err := repo.Find(context.Background(), id)
	require.NoError(t, err)
	assert.NotContains(t, row, "tenant_id")
}

func TestGuard_TenantFunc(t *testing.T) {
	t.Parallel()

	repo, _ := seedUsers(t)
	guard := scope.NewGuard(repo, scope.WithTenantFunc(func(context.Context) (int64, bool) {
		return globexID, true
	}))

	id, ok := guard.TenantID(context.Background())
	require.True(t, ok)
	assert.Equal(t, globexID, id)

	rows, err := guard.FindWhere(context.Background(), scope.Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, names(rows))
}

func TestNewRepository_EmptyTable(t *testing.T) {
	t.Parallel()

	_, err := scope.NewRepository(scope.NewMemoryExecutor(), scope.Model{})
	assert.ErrorIs(t, err, scope.ErrEmptyTable)
}
