package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenancy/internal/user"
	"github.com/dmitrymomot/tenancy/pkg/scope"
	"github.com/dmitrymomot/tenancy/pkg/tenant"
)

var (
	acme   = &tenant.Tenant{ID: 1, Name: "Acme", Slug: "acme", Status: tenant.StatusActive}
	globex = &tenant.Tenant{ID: 2, Name: "Globex", Slug: "globex", Status: tenant.StatusActive}
)

func newRepo(t *testing.T) (*user.Repository, *scope.MemoryExecutor) {
	t.Helper()
	exec := scope.NewMemoryExecutor()
	repo, err := user.NewRepository(exec)
	require.NoError(t, err)
	return repo, exec
}

func TestRepositoryIsolation(t *testing.T) {
	t.Parallel()

	repo, _ := newRepo(t)
	acmeCtx := tenant.WithTenant(context.Background(), acme)
	globexCtx := tenant.WithTenant(context.Background(), globex)

	a, err := repo.Create(acmeCtx, user.CreateParams{Email: " Ann@Acme.io ", Name: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.TenantID)
	assert.Equal(t, "ann@acme.io", a.Email)
	assert.Equal(t, user.RoleMember, a.Role)

	g, err := repo.Create(globexCtx, user.CreateParams{Email: "gus@globex.io", Name: "Gus", Role: user.RoleOwner})
	require.NoError(t, err)
	assert.Equal(t, int64(2), g.TenantID)

	_, err = repo.Find(globexCtx, a.ID)
	assert.ErrorIs(t, err, scope.ErrNotFound)

	_, err = repo.Update(globexCtx, a.ID, user.UpdateParams{Name: ptr("stolen")})
	assert.ErrorIs(t, err, scope.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(globexCtx, a.ID), scope.ErrNotFound)

	found, err := repo.FindByEmail(acmeCtx, "ANN@acme.io")
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)

	l, err := repo.List(acmeCtx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), l.Total)
	require.Len(t, l.Users, 1)
	assert.Equal(t, "Ann", l.Users[0].Name)

	total, err := repo.CountAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestRepositoryRequiresTenant(t *testing.T) {
	t.Parallel()

	repo, _ := newRepo(t)
	assert.True(t, repo.Guard().IsStrict())

	_, err := repo.Find(context.Background(), 1)
	assert.ErrorIs(t, err, scope.ErrNoTenant)

	_, err = repo.Create(context.Background(), user.CreateParams{Email: "a@b.io", Name: "A"})
	assert.ErrorIs(t, err, scope.ErrNoTenant)
}

func TestRepositoryUpdate(t *testing.T) {
	t.Parallel()

	repo, _ := newRepo(t)
	ctx := tenant.WithTenant(context.Background(), acme)

	u, err := repo.Create(ctx, user.CreateParams{Email: "ann@acme.io", Name: "Ann"})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, u.ID, user.UpdateParams{Name: ptr("Anna"), Role: ptr(user.RoleAdmin)})
	require.NoError(t, err)
	assert.Equal(t, "Anna", updated.Name)
	assert.Equal(t, user.RoleAdmin, updated.Role)
	assert.Equal(t, int64(1), updated.TenantID)

	require.NoError(t, repo.Delete(ctx, u.ID))
	_, err = repo.Find(ctx, u.ID)
	assert.ErrorIs(t, err, scope.ErrNotFound)
}

func TestRepositoryValidation(t *testing.T) {
	t.Parallel()

	repo, _ := newRepo(t)
	ctx := tenant.WithTenant(context.Background(), acme)

	_, err := repo.Create(ctx, user.CreateParams{Email: "not-an-email", Role: "root"})
	var verr *tenant.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "role")
	assert.ErrorIs(t, err, tenant.ErrValidation)
}

func ptr[T any](v T) *T { return &v }
