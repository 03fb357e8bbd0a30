package tenant

import "context"

// Store is the read side the resolver needs, plus partial updates.
//
// Implementations return ErrTenantNotFound for missing tenants. Any other
// error is treated as the store being unavailable.
type Store interface {
	FindBySlug(ctx context.Context, slug string) (*Tenant, error)
	FindByID(ctx context.Context, id int64) (*Tenant, error)
	// Update applies changes and reports whether a row matched.
	Update(ctx context.Context, id int64, changes Changes) (bool, error)
}

// ProvisioningStore adds what tenant administration needs.
type ProvisioningStore interface {
	Store
	FindByDomain(ctx context.Context, domain string) (*Tenant, error)
	// Create persists t and returns its new id. Duplicate slugs or domains
	// return ErrSlugTaken or ErrDomainTaken.
	Create(ctx context.Context, t *Tenant) (int64, error)
	List(ctx context.Context, filter ListFilter) ([]*Tenant, error)
	CountByStatus(ctx context.Context) (Stats, error)
}

// Changes is a partial update; nil fields are left untouched.
type Changes struct {
	Name     *string
	Slug     *string
	Domain   *string
	Status   *Status
	Settings Settings
}

func (c Changes) IsEmpty() bool {
	return c.Name == nil && c.Slug == nil && c.Domain == nil && c.Status == nil && c.Settings == nil
}

// ListFilter narrows List. Zero values mean no filtering; Search matches
// name or slug case-insensitively.
type ListFilter struct {
	Status Status
	Search string
	Limit  int
	Offset int
}

// Stats counts tenants per status.
type Stats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Inactive  int64 `json:"inactive"`
	Suspended int64 `json:"suspended"`
}
