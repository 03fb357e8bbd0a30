// Package user is a tenant-owned entity whose storage goes through a strict
// scope.Guard: every read, write and delete is confined to the tenant of the
// request.
package user

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/tenancy/pkg/scope"
)

const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Model is the users table; rows carry tenant_id.
var Model = scope.Model{Table: "users"}

var ErrMalformedRow = errors.New("user: malformed row")

type User struct {
	ID        int64     `json:"id"`
	TenantID  int64     `json:"tenant_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func fromRow(r scope.Row) (*User, error) {
	u := &User{}
	var ok bool
	if u.ID, ok = asInt64(r["id"]); !ok {
		return nil, fmt.Errorf("%w: id %v", ErrMalformedRow, r["id"])
	}
	if u.TenantID, ok = asInt64(r["tenant_id"]); !ok {
		return nil, fmt.Errorf("%w: tenant_id %v", ErrMalformedRow, r["tenant_id"])
	}
	u.Email, _ = r["email"].(string)
	u.Name, _ = r["name"].(string)
	u.Role, _ = r["role"].(string)
	u.CreatedAt, _ = r["created_at"].(time.Time)
	u.UpdatedAt, _ = r["updated_at"].(time.Time)
	return u, nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
