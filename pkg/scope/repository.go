package scope

import (
	"context"
	"fmt"
)

const (
	DefaultPrimaryKey   = "id"
	DefaultTenantColumn = "tenant_id"
)

// Model describes a table.
type Model struct {
	Table        string
	PrimaryKey   string
	TenantColumn string
	// Global marks tables shared by all tenants; guards never filter them.
	Global bool
}

func (m Model) withDefaults() Model {
	if m.PrimaryKey == "" {
		m.PrimaryKey = DefaultPrimaryKey
	}
	if m.TenantColumn == "" {
		m.TenantColumn = DefaultTenantColumn
	}
	return m
}

// Page is one page of a paginated read.
type Page struct {
	Items   []Row `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Pages   int   `json:"pages"`
}

// Repository is the data-access contract shared by BaseRepository and Guard.
// A nil id in Update or Delete means "every row matching q".
type Repository interface {
	Model() Model
	Query() Query
	Find(ctx context.Context, id any) (Row, error)
	FindWhere(ctx context.Context, q Query) ([]Row, error)
	First(ctx context.Context, q Query) (Row, error)
	Insert(ctx context.Context, rec Row) (int64, error)
	Update(ctx context.Context, q Query, id any, rec Row) (int64, error)
	Delete(ctx context.Context, q Query, id any) (int64, error)
	Count(ctx context.Context, q Query) (int64, error)
	Paginate(ctx context.Context, q Query, page, perPage int) (Page, error)
}

// BaseRepository runs queries exactly as given.
type BaseRepository struct {
	exec  Executor
	model Model
}

var _ Repository = (*BaseRepository)(nil)

func NewRepository(exec Executor, m Model) (*BaseRepository, error) {
	if m.Table == "" {
		return nil, ErrEmptyTable
	}
	return &BaseRepository{exec: exec, model: m.withDefaults()}, nil
}

func (r *BaseRepository) Model() Model { return r.model }

// Query starts a query against the model table.
func (r *BaseRepository) Query() Query { return From(r.model.Table) }

func (r *BaseRepository) Find(ctx context.Context, id any) (Row, error) {
	return r.First(ctx, r.Query().Where(r.model.PrimaryKey, id))
}

func (r *BaseRepository) FindWhere(ctx context.Context, q Query) ([]Row, error) {
	rows, err := r.exec.Select(ctx, r.bind(q))
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", r.model.Table, err)
	}
	return rows, nil
}

// First returns the first matching row or ErrNotFound.
func (r *BaseRepository) First(ctx context.Context, q Query) (Row, error) {
	rows, err := r.FindWhere(ctx, q.Limit(1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

func (r *BaseRepository) Insert(ctx context.Context, rec Row) (int64, error) {
	id, err := r.exec.Insert(ctx, r.model.Table, r.model.PrimaryKey, rec)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", r.model.Table, err)
	}
	return id, nil
}

func (r *BaseRepository) Update(ctx context.Context, q Query, id any, rec Row) (int64, error) {
	n, err := r.exec.Update(ctx, r.target(q, id), rec)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", r.model.Table, err)
	}
	return n, nil
}

func (r *BaseRepository) Delete(ctx context.Context, q Query, id any) (int64, error) {
	n, err := r.exec.Delete(ctx, r.target(q, id))
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", r.model.Table, err)
	}
	return n, nil
}

func (r *BaseRepository) Count(ctx context.Context, q Query) (int64, error) {
	n, err := r.exec.Count(ctx, r.bind(q).unbounded())
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.model.Table, err)
	}
	return n, nil
}

// Paginate returns page (1-based) of perPage rows plus the total count.
func (r *BaseRepository) Paginate(ctx context.Context, q Query, page, perPage int) (Page, error) {
	if page < 1 || perPage < 1 {
		return Page{}, ErrInvalidPage
	}

	total, err := r.Count(ctx, q)
	if err != nil {
		return Page{}, err
	}

	p := Page{
		Items:   []Row{},
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   pageCount(total, perPage),
	}
	// Past the last page; also keeps (page-1)*perPage below total.
	if total == 0 || page > p.Pages {
		return p, nil
	}

	rows, err := r.FindWhere(ctx, q.Limit(perPage).Offset((page-1)*perPage))
	if err != nil {
		return Page{}, err
	}
	p.Items = rows
	return p, nil
}

func pageCount(total int64, perPage int) int {
	pages := total / int64(perPage)
	if total%int64(perPage) != 0 {
		pages++
	}
	return int(pages)
}

// bind points q at the model table; a zero Query works as "all rows".
func (r *BaseRepository) bind(q Query) Query {
	q.table = r.model.Table
	return q
}

func (r *BaseRepository) target(q Query, id any) Query {
	q = r.bind(q)
	if id != nil {
		q = q.Where(r.model.PrimaryKey, id)
	}
	return q
}
