package scope_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenancy/pkg/scope"
)

func TestQuery_Immutable(t *testing.T) {
	t.Parallel()

	base := scope.From("users").Where("active", true)
	a := base.Where("role", "admin")
	b := base.Where("role", "member")

	assert.Len(t, base.Conditions(), 1)
	assert.Equal(t, "admin", a.Conditions()[1].Value)
	assert.Equal(t, "member", b.Conditions()[1].Value)

	scoped := base.ScopeTo("tenant_id", 1)
	assert.False(t, base.ScopeApplied())
	assert.True(t, scoped.ScopeApplied())
	assert.Equal(t, scoped, scoped.ScopeTo("tenant_id", 2))

	limit, offset := base.Limit(-5).Offset(3).Bounds()
	assert.Zero(t, limit)
	assert.Equal(t, 3, offset)
}

func TestMemoryExecutor_Operators(t *testing.T) {
	t.Parallel()

	exec := scope.NewMemoryExecutor()
	repo, err := scope.NewRepository(exec, scope.Model{Table: "items"})
	require.NoError(t, err)

	ctx := context.Background()
	for i, name := range []string{"Apple", "banana", "cherry", "date"} {
		_, err := repo.Insert(ctx, scope.Row{"name": name, "rank": i + 1})
		require.NoError(t, err)
	}

	tests := []struct {
		name string
		q    scope.Query
		want []string
	}{
		{"gt", scope.Query{}.WhereOp("rank", scope.OpGt, 2), []string{"cherry", "date"}},
		{"lte", scope.Query{}.WhereOp("rank", scope.OpLte, 1), []string{"Apple"}},
		{"not eq", scope.Query{}.WhereOp("name", scope.OpNotEq, "date"), []string{"Apple", "banana", "cherry"}},
		{"in", scope.Query{}.WhereOp("rank", scope.OpIn, []int64{2, 4}), []string{"banana", "date"}},
		{"like", scope.Query{}.WhereOp("name", scope.OpLike, "%an%"), []string{"banana"}},
		{"like prefix", scope.Query{}.WhereOp("name", scope.OpLike, "a%"), []string{"Apple"}},
		{"order desc", scope.Query{}.OrderBy("rank", true).Limit(2), []string{"date", "cherry"}},
		{"offset past end", scope.Query{}.Offset(10), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rows, err := repo.FindWhere(ctx, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(rows))
		})
	}

	t.Run("in requires slice", func(t *testing.T) {
		t.Parallel()

		_, err := repo.FindWhere(ctx, scope.Query{}.WhereOp("rank", scope.OpIn, 1))
		assert.Error(t, err)
	})

	t.Run("duplicate primary key", func(t *testing.T) {
		t.Parallel()

		_, err := repo.Insert(ctx, scope.Row{"id": 1, "name": "dup"})
		assert.Error(t, err)
	})
}
