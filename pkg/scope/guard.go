package scope

import (
	"context"
	"database/sql"
	"log/slog"
	"reflect"

	"github.com/dmitrymomot/tenancy/pkg/logger"
	"github.com/dmitrymomot/tenancy/pkg/tenant"
)

// TenantFunc reports the tenant bound to ctx.
type TenantFunc func(ctx context.Context) (int64, bool)

// Guard confines a Repository to the tenant in the context.
type Guard struct {
	repo     Repository
	model    Model
	strict   bool
	tenantID TenantFunc
	logger   *slog.Logger
}

var _ Repository = (*Guard)(nil)

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// Strict makes every operation fail with ErrNoTenant when the context has
// no tenant, instead of running unscoped.
func Strict() GuardOption {
	return func(g *Guard) { g.strict = true }
}

// WithStrict toggles strict mode from configuration.
func WithStrict(strict bool) GuardOption {
	return func(g *Guard) { g.strict = strict }
}

// WithTenantFunc replaces tenant.IDFromContext as the tenant source.
func WithTenantFunc(fn TenantFunc) GuardOption {
	return func(g *Guard) {
		if fn != nil {
			g.tenantID = fn
		}
	}
}

func WithLogger(l *slog.Logger) GuardOption {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

func NewGuard(repo Repository, opts ...GuardOption) *Guard {
	g := &Guard{
		repo:     repo,
		model:    repo.Model().withDefaults(),
		tenantID: tenant.IDFromContext,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// WithoutScope returns the wrapped repository for deliberate cross-tenant
// access.
func (g *Guard) WithoutScope() Repository { return g.repo }

// Enabled reports whether the model is filtered by tenant at all.
func (g *Guard) Enabled() bool { return !g.model.Global }

// IsStrict reports whether missing tenants are rejected.
func (g *Guard) IsStrict() bool { return g.strict }

// TenantID returns the tenant the guard would scope to; 0 is never valid.
func (g *Guard) TenantID(ctx context.Context) (int64, bool) {
	id, ok := g.tenantID(ctx)
	return id, ok && id != 0
}

func (g *Guard) Model() Model { return g.model }

func (g *Guard) Query() Query { return g.repo.Query() }

func (g *Guard) Find(ctx context.Context, id any) (Row, error) {
	q, err := g.scope(ctx, g.Query().Where(g.model.PrimaryKey, id))
	if err != nil {
		return nil, err
	}
	return g.repo.First(ctx, q)
}

func (g *Guard) FindWhere(ctx context.Context, q Query) ([]Row, error) {
	q, err := g.scope(ctx, q)
	if err != nil {
		return nil, err
	}
	return g.repo.FindWhere(ctx, q)
}

func (g *Guard) First(ctx context.Context, q Query) (Row, error) {
	q, err := g.scope(ctx, q)
	if err != nil {
		return nil, err
	}
	return g.repo.First(ctx, q)
}

// Insert stamps the tenant column unless rec already sets it.
func (g *Guard) Insert(ctx context.Context, rec Row) (int64, error) {
	rec, err := g.stamp(ctx, rec, false)
	if err != nil {
		return 0, err
	}
	return g.repo.Insert(ctx, rec)
}

// Update filters by tenant and forces the tenant column to the current
// tenant, so rows can neither be reached nor moved across tenants.
func (g *Guard) Update(ctx context.Context, q Query, id any, rec Row) (int64, error) {
	q, err := g.scope(ctx, q)
	if err != nil {
		return 0, err
	}
	if rec, err = g.stamp(ctx, rec, true); err != nil {
		return 0, err
	}
	return g.repo.Update(ctx, q, id, rec)
}

func (g *Guard) Delete(ctx context.Context, q Query, id any) (int64, error) {
	q, err := g.scope(ctx, q)
	if err != nil {
		return 0, err
	}
	return g.repo.Delete(ctx, q, id)
}

func (g *Guard) Count(ctx context.Context, q Query) (int64, error) {
	q, err := g.scope(ctx, q)
	if err != nil {
		return 0, err
	}
	return g.repo.Count(ctx, q)
}

func (g *Guard) Paginate(ctx context.Context, q Query, page, perPage int) (Page, error) {
	q, err := g.scope(ctx, q)
	if err != nil {
		return Page{}, err
	}
	return g.repo.Paginate(ctx, q, page, perPage)
}

// Scope applies the tenant filter to q the way every guarded read does.
func (g *Guard) Scope(ctx context.Context, q Query) (Query, error) {
	return g.scope(ctx, q)
}

// scope filters q by the context tenant. A query that is already scoped
// passes only when it targets the model's tenant column and that tenant.
func (g *Guard) scope(ctx context.Context, q Query) (Query, error) {
	if !g.Enabled() {
		return q, nil
	}
	id, ok := g.TenantID(ctx)
	if !ok {
		return q, g.missingTenant(ctx)
	}
	if col, scopedID, applied := q.ScopedTo(); applied {
		if col != g.model.TenantColumn || scopedID != id {
			g.logger.WarnContext(ctx, "rejected query scoped to another tenant",
				logger.Component("scope.guard"), logger.Table(g.model.Table),
				logger.TenantID(id), slog.Int64("query_tenant_id", scopedID), slog.String("query_column", col))
			return q, ErrScopeMismatch
		}
		return q, nil
	}
	return q.ScopeTo(g.model.TenantColumn, id), nil
}

func (g *Guard) stamp(ctx context.Context, rec Row, force bool) (Row, error) {
	if !g.Enabled() {
		return rec, nil
	}
	id, ok := g.TenantID(ctx)
	if !ok {
		return rec, g.missingTenant(ctx)
	}
	if !force && !absentTenant(rec[g.model.TenantColumn]) {
		return rec, nil
	}
	out := rec.Clone()
	out[g.model.TenantColumn] = id
	return out, nil
}

func (g *Guard) missingTenant(ctx context.Context) error {
	if g.strict {
		return ErrNoTenant
	}
	g.logger.DebugContext(ctx, "running unscoped: no tenant in context",
		logger.Component("scope.guard"), logger.Table(g.model.Table))
	return nil
}

// absentTenant treats a missing, nil, NULL or zero tenant value as unset.
func absentTenant(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case sql.NullInt64:
		return !t.Valid || t.Int64 == 0
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return true
		}
		v = rv.Elem().Interface()
	}
	id, ok := toInt64(v)
	return ok && id == 0
}
