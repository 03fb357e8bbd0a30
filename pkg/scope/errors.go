package scope

import "errors"

var (
	// ErrNoTenant is returned by strict guards when the context has no tenant.
	ErrNoTenant = errors.New("scope: no tenant in context")

	// ErrNotFound is returned when a single-row lookup matches nothing.
	ErrNotFound = errors.New("scope: record not found")

	// ErrScopeMismatch is returned when a query arrives scoped to a tenant
	// other than the one in the context.
	ErrScopeMismatch = errors.New("scope: query is scoped to another tenant")

	ErrEmptyTable  = errors.New("scope: model table is empty")
	ErrInvalidPage = errors.New("scope: page and per-page must be positive")
)
