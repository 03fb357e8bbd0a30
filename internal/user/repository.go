package user

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrymomot/tenancy/pkg/scope"
	"github.com/dmitrymomot/tenancy/pkg/tenant"
)

type CreateParams struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Name  string `json:"name" validate:"required,max=100"`
	Role  string `json:"role" validate:"omitempty,oneof=owner admin member"`
}

type UpdateParams struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=100"`
	Role *string `json:"role" validate:"omitempty,oneof=owner admin member"`
}

// List is one page of users.
type List struct {
	Users   []*User `json:"users"`
	Total   int64   `json:"total"`
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
	Pages   int     `json:"pages"`
}

// Repository stores users for the tenant in the context.
type Repository struct {
	guard    *scope.Guard
	validate *validator.Validate
	now      func() time.Time
}

// NewRepository builds a strict guard over exec. Extra options are applied
// after scope.Strict.
func NewRepository(exec scope.Executor, opts ...scope.GuardOption) (*Repository, error) {
	base, err := scope.NewRepository(exec, Model)
	if err != nil {
		return nil, err
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return &Repository{
		guard:    scope.NewGuard(base, append([]scope.GuardOption{scope.Strict()}, opts...)...),
		validate: v,
		now:      time.Now,
	}, nil
}

// Guard exposes the underlying guard, e.g. for WithoutScope reporting.
func (r *Repository) Guard() *scope.Guard { return r.guard }

func (r *Repository) Find(ctx context.Context, id int64) (*User, error) {
	row, err := r.guard.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return fromRow(row)
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row, err := r.guard.First(ctx, r.guard.Query().Where("email", strings.ToLower(email)))
	if err != nil {
		return nil, err
	}
	return fromRow(row)
}

// List pages through the tenant's users ordered by id.
func (r *Repository) List(ctx context.Context, page, perPage int) (List, error) {
	p, err := r.guard.Paginate(ctx, r.guard.Query().OrderBy("id", false), page, perPage)
	if err != nil {
		return List{}, err
	}
	out := List{Users: make([]*User, 0, len(p.Items)), Total: p.Total, Page: p.Page, PerPage: p.PerPage, Pages: p.Pages}
	for _, row := range p.Items {
		u, err := fromRow(row)
		if err != nil {
			return List{}, err
		}
		out.Users = append(out.Users, u)
	}
	return out, nil
}

// Create inserts a user owned by the current tenant.
func (r *Repository) Create(ctx context.Context, p CreateParams) (*User, error) {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Name = strings.TrimSpace(p.Name)
	if err := r.check(ctx, p); err != nil {
		return nil, err
	}
	if p.Role == "" {
		p.Role = RoleMember
	}

	now := r.now().UTC()
	id, err := r.guard.Insert(ctx, scope.Row{
		"email":      p.Email,
		"name":       p.Name,
		"role":       p.Role,
		"created_at": now,
		"updated_at": now,
	})
	if err != nil {
		return nil, err
	}
	return r.Find(ctx, id)
}

// Update changes name or role; a user of another tenant is ErrNotFound.
func (r *Repository) Update(ctx context.Context, id int64, p UpdateParams) (*User, error) {
	if err := r.check(ctx, p); err != nil {
		return nil, err
	}
	rec := scope.Row{"updated_at": r.now().UTC()}
	if p.Name != nil {
		rec["name"] = strings.TrimSpace(*p.Name)
	}
	if p.Role != nil {
		rec["role"] = *p.Role
	}

	n, err := r.guard.Update(ctx, r.guard.Query(), id, rec)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, scope.ErrNotFound
	}
	return r.Find(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	n, err := r.guard.Delete(ctx, r.guard.Query(), id)
	if err != nil {
		return err
	}
	if n == 0 {
		return scope.ErrNotFound
	}
	return nil
}

// CountAll counts users of every tenant.
func (r *Repository) CountAll(ctx context.Context) (int64, error) {
	return r.guard.WithoutScope().Count(ctx, scope.Query{})
}

func (r *Repository) check(ctx context.Context, v any) error {
	err := r.validate.StructCtx(ctx, v)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "is required"
		case "email":
			fields[fe.Field()] = "must be a valid email"
		case "oneof":
			fields[fe.Field()] = "must be one of: " + fe.Param()
		default:
			fields[fe.Field()] = "is invalid"
		}
	}
	return &tenant.ValidationError{Fields: fields}
}
