package pg

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrymomot/tenancy/pkg/scope"
)

// DBTX is the database/sql surface shared by *sql.DB, *sql.Conn and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Executor renders scope queries as PostgreSQL statements.
type Executor struct {
	db DBTX
}

var _ scope.Executor = (*Executor)(nil)

func NewExecutor(db DBTX) *Executor {
	return &Executor{db: db}
}

func (e *Executor) Select(ctx context.Context, q scope.Query) ([]scope.Row, error) {
	query, args, err := buildSelect(q)
	if err != nil {
		return nil, err
	}

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []scope.Row{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(scope.Row, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (e *Executor) Count(ctx context.Context, q scope.Query) (int64, error) {
	b := &builder{}
	table, err := quoteIdent(q.Table())
	if err != nil {
		return 0, err
	}
	b.WriteString("SELECT COUNT(*) FROM " + table)
	if err := b.where(q.Conditions()); err != nil {
		return 0, err
	}

	var n int64
	if err := e.db.QueryRowContext(ctx, b.String(), b.args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (e *Executor) Insert(ctx context.Context, table, pk string, rec scope.Row) (int64, error) {
	query, args, err := buildInsert(table, pk, rec)
	if err != nil {
		return 0, err
	}

	var id int64
	if err := e.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (e *Executor) Update(ctx context.Context, q scope.Query, values scope.Row) (int64, error) {
	if len(values) == 0 {
		return 0, nil
	}
	query, args, err := buildUpdate(q, values)
	if err != nil {
		return 0, err
	}
	return e.exec(ctx, query, args)
}

func (e *Executor) Delete(ctx context.Context, q scope.Query) (int64, error) {
	table, err := quoteIdent(q.Table())
	if err != nil {
		return 0, err
	}
	b := &builder{}
	b.WriteString("DELETE FROM " + table)
	if err := b.where(q.Conditions()); err != nil {
		return 0, err
	}
	return e.exec(ctx, b.String(), b.args)
}

func (e *Executor) exec(ctx context.Context, query string, args []any) (int64, error) {
	res, err := e.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func quoteIdent(name string) (string, error) {
	if !identPattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return `"` + name + `"`, nil
}

// builder accumulates SQL text and positional arguments.
type builder struct {
	strings.Builder
	args []any
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *builder) where(conds []scope.Condition) error {
	for i, c := range conds {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		col, err := quoteIdent(c.Column)
		if err != nil {
			return err
		}
		if err := b.condition(col, c); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) condition(col string, c scope.Condition) error {
	switch c.Op {
	case scope.OpEq, scope.OpNotEq:
		if c.Value == nil {
			if c.Op == scope.OpEq {
				b.WriteString(col + " IS NULL")
			} else {
				b.WriteString(col + " IS NOT NULL")
			}
			return nil
		}
		b.WriteString(col + " " + string(c.Op) + " " + b.arg(c.Value))
	case scope.OpLt, scope.OpLte, scope.OpGt, scope.OpGte:
		b.WriteString(col + " " + string(c.Op) + " " + b.arg(c.Value))
	case scope.OpLike:
		b.WriteString(col + " ILIKE " + b.arg(c.Value))
	case scope.OpIn:
		v := reflect.ValueOf(c.Value)
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return fmt.Errorf("%w: IN needs a slice, got %T", ErrUnsupportedOperator, c.Value)
		}
		if v.Len() == 0 {
			b.WriteString("FALSE")
			return nil
		}
		placeholders := make([]string, v.Len())
		for i := range v.Len() {
			placeholders[i] = b.arg(v.Index(i).Interface())
		}
		b.WriteString(col + " IN (" + strings.Join(placeholders, ", ") + ")")
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedOperator, c.Op)
	}
	return nil
}

func buildSelect(q scope.Query) (string, []any, error) {
	table, err := quoteIdent(q.Table())
	if err != nil {
		return "", nil, err
	}

	b := &builder{}
	b.WriteString("SELECT * FROM " + table)
	if err := b.where(q.Conditions()); err != nil {
		return "", nil, err
	}

	if orders := q.Orders(); len(orders) > 0 {
		parts := make([]string, 0, len(orders))
		for _, o := range orders {
			col, err := quoteIdent(o.Column)
			if err != nil {
				return "", nil, err
			}
			if o.Desc {
				col += " DESC"
			}
			parts = append(parts, col)
		}
		b.WriteString(" ORDER BY " + strings.Join(parts, ", "))
	}

	limit, offset := q.Bounds()
	if limit > 0 {
		b.WriteString(" LIMIT " + strconv.Itoa(limit))
	}
	if offset > 0 {
		b.WriteString(" OFFSET " + strconv.Itoa(offset))
	}
	return b.String(), b.args, nil
}

func buildInsert(table, pk string, rec scope.Row) (string, []any, error) {
	t, err := quoteIdent(table)
	if err != nil {
		return "", nil, err
	}
	key, err := quoteIdent(pk)
	if err != nil {
		return "", nil, err
	}

	if len(rec) == 0 {
		return "INSERT INTO " + t + " DEFAULT VALUES RETURNING " + key, nil, nil
	}

	b := &builder{}
	cols := sortedKeys(rec)
	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, c := range cols {
		if quoted[i], err = quoteIdent(c); err != nil {
			return "", nil, err
		}
		placeholders[i] = b.arg(rec[c])
	}
	b.WriteString("INSERT INTO " + t + " (" + strings.Join(quoted, ", ") + ") VALUES (" +
		strings.Join(placeholders, ", ") + ") RETURNING " + key)
	return b.String(), b.args, nil
}

func buildUpdate(q scope.Query, values scope.Row) (string, []any, error) {
	table, err := quoteIdent(q.Table())
	if err != nil {
		return "", nil, err
	}

	b := &builder{}
	sets := make([]string, 0, len(values))
	for _, c := range sortedKeys(values) {
		col, err := quoteIdent(c)
		if err != nil {
			return "", nil, err
		}
		sets = append(sets, col+" = "+b.arg(values[c]))
	}
	b.WriteString("UPDATE " + table + " SET " + strings.Join(sets, ", "))
	if err := b.where(q.Conditions()); err != nil {
		return "", nil, err
	}
	return b.String(), b.args, nil
}

func sortedKeys(r scope.Row) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
