package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/tenancy/pkg/tenant"
)

const tenantColumns = `id, name, slug, domain, status, settings, created_at, updated_at`

// Unique constraint names created by the tenants migration.
const (
	tenantSlugConstraint   = "tenants_slug_key"
	tenantDomainConstraint = "tenants_domain_key"
)

// TenantStore keeps tenants in the "tenants" table.
type TenantStore struct {
	db DBTX
}

var _ tenant.ProvisioningStore = (*TenantStore)(nil)

func NewTenantStore(db DBTX) *TenantStore {
	return &TenantStore{db: db}
}

func (s *TenantStore) FindBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	return s.findOne(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE slug = $1`, slug)
}

func (s *TenantStore) FindByID(ctx context.Context, id int64) (*tenant.Tenant, error) {
	return s.findOne(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
}

func (s *TenantStore) FindByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	if domain == "" {
		return nil, tenant.ErrTenantNotFound
	}
	return s.findOne(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE lower(domain) = lower($1)`, domain)
}

func (s *TenantStore) Create(ctx context.Context, t *tenant.Tenant) (int64, error) {
	settings, err := t.Settings.Encode()
	if err != nil {
		return 0, err
	}

	err = s.db.QueryRowContext(ctx,
		`INSERT INTO tenants (name, slug, domain, status, settings)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		t.Name, t.Slug, nullString(t.Domain), string(t.Status), settings,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return 0, mapTenantError(err)
	}
	return t.ID, nil
}

func (s *TenantStore) Update(ctx context.Context, id int64, ch tenant.Changes) (bool, error) {
	if ch.IsEmpty() {
		_, err := s.FindByID(ctx, id)
		if errors.Is(err, tenant.ErrTenantNotFound) {
			return false, nil
		}
		return err == nil, err
	}

	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if ch.Name != nil {
		set("name", *ch.Name)
	}
	if ch.Slug != nil {
		set("slug", *ch.Slug)
	}
	if ch.Domain != nil {
		set("domain", nullString(*ch.Domain))
	}
	if ch.Status != nil {
		set("status", string(*ch.Status))
	}
	if ch.Settings != nil {
		encoded, err := ch.Settings.Encode()
		if err != nil {
			return false, err
		}
		set("settings", encoded)
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := `UPDATE tenants SET ` + strings.Join(sets, ", ") + ` WHERE id = $` + strconv.Itoa(len(args))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, mapTenantError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *TenantStore) List(ctx context.Context, f tenant.ListFilter) ([]*tenant.Tenant, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := strconv.Itoa(len(args))
		where = append(where, "(name ILIKE $"+n+" OR slug ILIKE $"+n+")")
	}

	query := `SELECT ` + tenantColumns + ` FROM tenants`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY name, id`
	if f.Limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(f.Limit)
	}
	if f.Offset > 0 {
		query += ` OFFSET ` + strconv.Itoa(f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	out := []*tenant.Tenant{}
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *TenantStore) CountByStatus(ctx context.Context) (tenant.Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM tenants GROUP BY status`)
	if err != nil {
		return tenant.Stats{}, fmt.Errorf("count tenants: %w", err)
	}
	defer rows.Close()

	var st tenant.Stats
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return tenant.Stats{}, err
		}
		st.Total += n
		switch tenant.Status(status) {
		case tenant.StatusActive:
			st.Active = n
		case tenant.StatusInactive:
			st.Inactive = n
		case tenant.StatusSuspended:
			st.Suspended = n
		}
	}
	return st, rows.Err()
}

func (s *TenantStore) findOne(ctx context.Context, query string, arg any) (*tenant.Tenant, error) {
	t, err := scanTenant(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if IsNotFoundError(err) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, err
	}
	return t, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTenant(row scanner) (*tenant.Tenant, error) {
	var (
		t        tenant.Tenant
		domain   sql.NullString
		status   string
		settings sql.NullString
		created  time.Time
		updated  time.Time
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &domain, &status, &settings, &created, &updated); err != nil {
		return nil, err
	}
	t.Domain = domain.String
	t.Status = tenant.Status(status)
	t.Settings = tenant.ParseSettings(settings.String)
	t.CreatedAt, t.UpdatedAt = created, updated
	return &t, nil
}

func mapTenantError(err error) error {
	if IsDuplicateKeyError(err) {
		switch ConstraintName(err) {
		case tenantSlugConstraint:
			return tenant.ErrSlugTaken
		case tenantDomainConstraint:
			return tenant.ErrDomainTaken
		}
	}
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
