package scope

import (
	"context"
	"maps"
)

// Row is one record keyed by column name.
type Row map[string]any

// Clone returns a shallow copy.
func (r Row) Clone() Row {
	if r == nil {
		return Row{}
	}
	return maps.Clone(r)
}

// Executor runs queries against storage. It applies no tenant logic.
type Executor interface {
	Select(ctx context.Context, q Query) ([]Row, error)
	Count(ctx context.Context, q Query) (int64, error)
	// Insert stores rec and returns the generated primary key.
	Insert(ctx context.Context, table, pk string, rec Row) (int64, error)
	// Update sets values on every row matching q and returns the affected count.
	Update(ctx context.Context, q Query, values Row) (int64, error)
	Delete(ctx context.Context, q Query) (int64, error)
}
