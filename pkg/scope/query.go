package scope

import "slices"

// Op is a comparison operator.
type Op string

const (
	OpEq    Op = "="
	OpNotEq Op = "<>"
	OpLt    Op = "<"
	OpLte   Op = "<="
	OpGt    Op = ">"
	OpGte   Op = ">="
	OpIn    Op = "IN"
	OpLike  Op = "LIKE"
)

// Condition is one ANDed predicate. For OpIn, Value is a slice.
type Condition struct {
	Column string
	Op     Op
	Value  any
}

// Order sorts by Column, descending when Desc.
type Order struct {
	Column string
	Desc   bool
}

// Query is an immutable description of a filtered read or write. Every
// builder method returns a copy.
type Query struct {
	table  string
	conds  []Condition
	orders []Order
	limit  int
	offset int

	scoped      bool
	scopeColumn string
	scopeTenant int64
}

// From starts a query against table.
func From(table string) Query {
	return Query{table: table}
}

func (q Query) Table() string { return q.table }

// Where adds "column = value".
func (q Query) Where(column string, value any) Query {
	return q.WhereOp(column, OpEq, value)
}

func (q Query) WhereOp(column string, op Op, value any) Query {
	q.conds = append(slices.Clip(q.conds), Condition{Column: column, Op: op, Value: value})
	return q
}

func (q Query) OrderBy(column string, desc bool) Query {
	q.orders = append(slices.Clip(q.orders), Order{Column: column, Desc: desc})
	return q
}

// Limit caps the rows returned; 0 means no limit.
func (q Query) Limit(n int) Query {
	q.limit = max(n, 0)
	return q
}

func (q Query) Offset(n int) Query {
	q.offset = max(n, 0)
	return q
}

// Conditions returns a copy of the predicates.
func (q Query) Conditions() []Condition { return slices.Clone(q.conds) }

// Orders returns a copy of the sort order.
func (q Query) Orders() []Order { return slices.Clone(q.orders) }

// Bounds returns the limit and offset.
func (q Query) Bounds() (limit, offset int) { return q.limit, q.offset }

// ScopeApplied reports whether a tenant filter is already part of the query.
func (q Query) ScopeApplied() bool { return q.scoped }

// ScopedTo returns the tenant filter recorded by ScopeTo.
func (q Query) ScopedTo() (column string, tenantID int64, ok bool) {
	return q.scopeColumn, q.scopeTenant, q.scoped
}

// ScopeTo adds "column = tenantID" and marks the query scoped. A query that
// is already scoped is returned unchanged. Guards reject a query scoped to a
// column or tenant other than their own.
func (q Query) ScopeTo(column string, tenantID int64) Query {
	if q.scoped {
		return q
	}
	q = q.Where(column, tenantID)
	q.scoped, q.scopeColumn, q.scopeTenant = true, column, tenantID
	return q
}

// unbounded drops limit, offset and ordering, for counts.
func (q Query) unbounded() Query {
	q.limit, q.offset, q.orders = 0, 0, nil
	return q
}
