package tenant

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a tenant. Only active tenants resolve.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// ParseStatus accepts the status name in any case.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// Tenant is an isolated customer organization.
type Tenant struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Domain    string    `json:"domain,omitempty"`
	Status    Status    `json:"status"`
	Settings  Settings  `json:"settings,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the tenant may serve requests.
func (t *Tenant) IsActive() bool {
	return t != nil && t.Status == StatusActive
}

// Setting returns the named setting or def when absent.
func (t *Tenant) Setting(key string, def Value) Value {
	if t == nil {
		return def
	}
	return t.Settings.Get(key, def)
}

// Clone returns a deep copy; cached tenants are shared and must not be mutated.
func (t *Tenant) Clone() *Tenant {
	if t == nil {
		return nil
	}
	c := *t
	c.Settings = t.Settings.Clone()
	return &c
}
