package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrymomot/tenancy/pkg/logger"
	"github.com/dmitrymomot/tenancy/pkg/slug"
)

// CreateParams describes a new tenant. An empty Slug is derived from Name.
type CreateParams struct {
	Name     string   `json:"name" validate:"required,min=3,max=100"`
	Slug     string   `json:"slug" validate:"omitempty,min=3,max=50,slug"`
	Domain   string   `json:"domain" validate:"omitempty,fqdn"`
	Status   Status   `json:"status" validate:"omitempty,tenant_status"`
	Settings Settings `json:"settings"`
}

// UpdateParams changes tenant identity fields; nil fields are kept.
type UpdateParams struct {
	Name   *string `json:"name" validate:"omitempty,min=3,max=100"`
	Slug   *string `json:"slug" validate:"omitempty,min=3,max=50,slug"`
	Domain *string `json:"domain" validate:"omitempty,fqdn"`
}

// Invalidator evicts a cached tenant by slug.
type Invalidator interface {
	Invalidate(ctx context.Context, slug string)
}

type cacheInvalidator struct{ cache Cache }

func (c cacheInvalidator) Invalidate(ctx context.Context, slug string) {
	c.cache.Delete(ctx, slug)
}

// Manager provisions and administers tenants. Every mutation evicts the
// tenant from the resolver cache.
type Manager struct {
	store       ProvisioningStore
	invalidator Invalidator
	defaults    Settings
	validate *validator.Validate
	logger   *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerCache evicts mutated tenants from c. Use it when the resolver
// runs in another process and shares c; in-flight lookups there may still
// re-cache until the TTL expires.
func WithManagerCache(c Cache) ManagerOption {
	return func(m *Manager) {
		if c != nil {
			m.invalidator = cacheInvalidator{c}
		}
	}
}

// WithManagerResolver invalidates through r, so a lookup in flight during a
// mutation does not re-cache the old tenant.
func WithManagerResolver(r *Resolver) ManagerOption {
	return func(m *Manager) {
		if r != nil {
			m.invalidator = r
		}
	}
}

// WithDefaultSettings replaces DefaultSettings for new tenants.
func WithDefaultSettings(s Settings) ManagerOption {
	return func(m *Manager) { m.defaults = s.Clone() }
}

func WithManagerLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func NewManager(store ProvisioningStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:       store,
		invalidator: cacheInvalidator{NewNoOpCache()},
		defaults:    DefaultSettings(),
		validate:    newValidator(),
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create validates p, allocates a unique slug when none is given, and stores
// the tenant with default settings overlaid by p.Settings.
func (m *Manager) Create(ctx context.Context, p CreateParams) (*Tenant, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Slug = strings.ToLower(strings.TrimSpace(p.Slug))
	p.Domain = strings.ToLower(strings.TrimSpace(p.Domain))

	if err := m.validate.StructCtx(ctx, p); err != nil {
		return nil, validationError(err)
	}

	s := p.Slug
	if s == "" {
		var err error
		if s, err = m.UniqueSlug(ctx, p.Name); err != nil {
			return nil, err
		}
	} else if err := m.ensureFree(ctx, s); err != nil {
		return nil, err
	}

	if p.Domain != "" {
		if _, err := m.store.FindByDomain(ctx, p.Domain); err == nil {
			return nil, ErrDomainTaken
		} else if !errors.Is(err, ErrTenantNotFound) {
			return nil, fmt.Errorf("check domain: %w", err)
		}
	}

	t := &Tenant{
		Name:     p.Name,
		Slug:     s,
		Domain:   p.Domain,
		Status:   StatusActive,
		Settings: m.defaults.Merge(p.Settings),
	}
	if p.Status != "" {
		t.Status = p.Status
	}

	id, err := m.store.Create(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	t.ID = id

	m.logger.InfoContext(ctx, "tenant created",
		logger.Component("tenant.manager"), logger.TenantID(t.ID), logger.TenantSlug(t.Slug))
	return t, nil
}

// UniqueSlug derives a slug from name and appends -1, -2, ... until it is
// unused: "Acme Inc" becomes "acme-inc", then "acme-inc-1".
func (m *Manager) UniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name, slug.MaxLength(maxSlugLength-4))
	if len(base) < minSlugLength {
		return "", &ValidationError{Fields: map[string]string{"slug": "cannot be derived from name"}}
	}
	for n := 0; ; n++ {
		candidate := slug.Numbered(base, n)
		_, err := m.store.FindBySlug(ctx, candidate)
		if errors.Is(err, ErrTenantNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
	}
}

func (m *Manager) Get(ctx context.Context, id int64) (*Tenant, error) {
	return m.store.FindByID(ctx, id)
}

func (m *Manager) GetBySlug(ctx context.Context, s string) (*Tenant, error) {
	return m.store.FindBySlug(ctx, s)
}

func (m *Manager) List(ctx context.Context, f ListFilter) ([]*Tenant, error) {
	return m.store.List(ctx, f)
}

// ListActive lists tenants a user may switch to.
func (m *Manager) ListActive(ctx context.Context) ([]*Tenant, error) {
	return m.store.List(ctx, ListFilter{Status: StatusActive})
}

func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	return m.store.CountByStatus(ctx)
}

// Update changes name, slug or domain. Slugs are never regenerated from a
// new name; pass Slug explicitly to rename the subdomain.
func (m *Manager) Update(ctx context.Context, id int64, p UpdateParams) (*Tenant, error) {
	p.Name = trimmed(p.Name, false)
	p.Slug = trimmed(p.Slug, true)
	p.Domain = trimmed(p.Domain, true)

	if err := m.validate.StructCtx(ctx, p); err != nil {
		return nil, validationError(err)
	}

	current, err := m.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ch := Changes{Name: p.Name}
	if p.Slug != nil && *p.Slug != current.Slug {
		if err := m.ensureFree(ctx, *p.Slug); err != nil {
			return nil, err
		}
		ch.Slug = p.Slug
	}
	if p.Domain != nil && *p.Domain != current.Domain {
		if *p.Domain != "" {
			owner, err := m.store.FindByDomain(ctx, *p.Domain)
			switch {
			case err == nil && owner.ID != id:
				return nil, ErrDomainTaken
			case err != nil && !errors.Is(err, ErrTenantNotFound):
				return nil, fmt.Errorf("check domain: %w", err)
			}
		}
		ch.Domain = p.Domain
	}
	if ch.IsEmpty() {
		return current, nil
	}

	if err := m.apply(ctx, current, ch); err != nil {
		return nil, err
	}
	return m.store.FindByID(ctx, id)
}

func trimmed(s *string, lower bool) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if lower {
		v = strings.ToLower(v)
	}
	return &v
}

func (m *Manager) Activate(ctx context.Context, id int64) error {
	return m.SetStatus(ctx, id, StatusActive)
}

func (m *Manager) Deactivate(ctx context.Context, id int64) error {
	return m.SetStatus(ctx, id, StatusInactive)
}

func (m *Manager) Suspend(ctx context.Context, id int64) error {
	return m.SetStatus(ctx, id, StatusSuspended)
}

func (m *Manager) SetStatus(ctx context.Context, id int64, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	current, err := m.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == status {
		return nil
	}
	if err := m.apply(ctx, current, Changes{Status: &status}); err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "tenant status changed",
		logger.Component("tenant.manager"), logger.TenantID(id),
		slog.String("from", current.Status.String()), slog.String("to", status.String()))
	return nil
}

// UpdateSettings merges s into the tenant's settings and returns the result.
func (m *Manager) UpdateSettings(ctx context.Context, id int64, s Settings) (Settings, error) {
	current, err := m.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := current.Settings.Merge(s)
	if err := m.apply(ctx, current, Changes{Settings: merged}); err != nil {
		return nil, err
	}
	return merged, nil
}

// Setting reads one setting of tenant id, or def.
func (m *Manager) Setting(ctx context.Context, id int64, key string, def Value) (Value, error) {
	t, err := m.store.FindByID(ctx, id)
	if err != nil {
		return def, err
	}
	return t.Setting(key, def), nil
}

// Seed creates every tenant whose slug is not taken yet and returns how many
// were created. Existing slugs are skipped, so seeding is repeatable.
func (m *Manager) Seed(ctx context.Context, tenants []CreateParams) (int, error) {
	created := 0
	for _, p := range tenants {
		if strings.TrimSpace(p.Slug) == "" {
			p.Slug = slug.Make(p.Name, slug.MaxLength(maxSlugLength))
		}
		_, err := m.Create(ctx, p)
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrSlugTaken), errors.Is(err, ErrDomainTaken):
			m.logger.DebugContext(ctx, "seed tenant exists",
				logger.Component("tenant.manager"), logger.TenantSlug(p.Slug))
		default:
			return created, fmt.Errorf("seed %q: %w", p.Name, err)
		}
	}
	return created, nil
}

func (m *Manager) ensureFree(ctx context.Context, s string) error {
	_, err := m.store.FindBySlug(ctx, s)
	if err == nil {
		return ErrSlugTaken
	}
	if errors.Is(err, ErrTenantNotFound) {
		return nil
	}
	return fmt.Errorf("check slug: %w", err)
}

func (m *Manager) apply(ctx context.Context, current *Tenant, ch Changes) error {
	ok, err := m.store.Update(ctx, current.ID, ch)
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	if !ok {
		return ErrTenantNotFound
	}
	m.invalidator.Invalidate(ctx, current.Slug)
	if ch.Slug != nil {
		m.invalidator.Invalidate(ctx, *ch.Slug)
	}
	return nil
}
