package tenant

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnresolved is returned when a request carries no tenant candidate.
	ErrUnresolved = errors.New("tenant not specified")

	// ErrTenantNotFound is returned when no tenant matches the candidate slug or id.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInactiveTenant is returned when the matched tenant is not active.
	ErrInactiveTenant = errors.New("tenant is inactive")

	// ErrStoreUnavailable wraps any tenant store failure other than not-found.
	ErrStoreUnavailable = errors.New("tenant store unavailable")

	// ErrNoTenantInContext is returned when no tenant is bound to the context.
	ErrNoTenantInContext = errors.New("no tenant in context")

	ErrInvalidMode   = errors.New("invalid tenancy mode")
	ErrInvalidStatus = errors.New("invalid tenant status")
	ErrSlugTaken     = errors.New("tenant slug already taken")
	ErrDomainTaken   = errors.New("tenant domain already taken")
	ErrValidation    = errors.New("tenant validation failed")
)

// ValidationError lists invalid fields keyed by their JSON name.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
