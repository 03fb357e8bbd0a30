package scope

import (
	"cmp"
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// MemoryExecutor is an Executor over in-process tables. Rows are copied in
// and out, so callers never share state with the store.
type MemoryExecutor struct {
	mu     sync.RWMutex
	tables map[string][]Row
	seq    map[string]int64
}

func NewMemoryExecutor() *MemoryExecutor {
	return &MemoryExecutor{
		tables: make(map[string][]Row),
		seq:    make(map[string]int64),
	}
}

func (m *MemoryExecutor) Select(_ context.Context, q Query) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows, err := m.match(q)
	if err != nil {
		return nil, err
	}

	if orders := q.Orders(); len(orders) > 0 {
		slices.SortStableFunc(rows, func(a, b Row) int {
			for _, o := range orders {
				c, _ := compare(a[o.Column], b[o.Column])
				if o.Desc {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}

	limit, offset := q.Bounds()
	if offset >= len(rows) {
		return []Row{}, nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}

	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out, nil
}

func (m *MemoryExecutor) Count(_ context.Context, q Query) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows, err := m.match(q)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

// Insert assigns the next sequence value unless rec already carries a
// non-zero primary key.
func (m *MemoryExecutor) Insert(_ context.Context, table, pk string, rec Row) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row := rec.Clone()
	id, ok := toInt64(row[pk])
	if !ok || id == 0 {
		m.seq[table]++
		id = m.seq[table]
	} else {
		m.seq[table] = max(m.seq[table], id)
	}
	row[pk] = id

	for _, existing := range m.tables[table] {
		if c, _ := compare(existing[pk], id); c == 0 {
			return 0, fmt.Errorf("duplicate %s %d in %s", pk, id, table)
		}
	}
	m.tables[table] = append(m.tables[table], row)
	return id, nil
}

func (m *MemoryExecutor) Update(_ context.Context, q Query, values Row) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, row := range m.tables[q.Table()] {
		ok, err := matches(row, q.Conditions())
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		for k, v := range values {
			row[k] = v
		}
		n++
	}
	return n, nil
}

func (m *MemoryExecutor) Delete(_ context.Context, q Query) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.tables[q.Table()]
	kept := rows[:0]
	var n int64
	for _, row := range rows {
		ok, err := matches(row, q.Conditions())
		if err != nil {
			return 0, err
		}
		if ok {
			n++
			continue
		}
		kept = append(kept, row)
	}
	clear(rows[len(kept):])
	m.tables[q.Table()] = kept
	return n, nil
}

// Must be called with m.mu held.
func (m *MemoryExecutor) match(q Query) ([]Row, error) {
	conds := q.Conditions()
	var out []Row
	for _, row := range m.tables[q.Table()] {
		ok, err := matches(row, conds)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func matches(row Row, conds []Condition) (bool, error) {
	for _, c := range conds {
		ok, err := evaluate(row[c.Column], c.Op, c.Value)
		if err != nil {
			return false, fmt.Errorf("column %s: %w", c.Column, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func evaluate(have any, op Op, want any) (bool, error) {
	switch op {
	case OpIn:
		v := reflect.ValueOf(want)
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return false, fmt.Errorf("IN needs a slice, got %T", want)
		}
		for i := range v.Len() {
			if c, ok := compare(have, v.Index(i).Interface()); ok && c == 0 {
				return true, nil
			}
		}
		return false, nil
	case OpLike:
		s, ok1 := have.(string)
		pattern, ok2 := want.(string)
		if !ok1 || !ok2 {
			return false, nil
		}
		return like(s, pattern), nil
	}

	c, ok := compare(have, want)
	if !ok {
		return op == OpNotEq, nil
	}
	switch op {
	case OpEq:
		return c == 0, nil
	case OpNotEq:
		return c != 0, nil
	case OpLt:
		return c < 0, nil
	case OpLte:
		return c <= 0, nil
	case OpGt:
		return c > 0, nil
	case OpGte:
		return c >= 0, nil
	}
	return false, fmt.Errorf("unsupported operator %q", op)
}

// compare orders numbers numerically and strings lexically; ok is false for
// values that cannot be compared.
func compare(a, b any) (int, bool) {
	if a == nil || b == nil {
		if a == nil && b == nil {
			return 0, true
		}
		return 0, false
	}
	if x, ok := toFloat(a); ok {
		if y, ok := toFloat(b); ok {
			return cmp.Compare(x, y), true
		}
		return 0, false
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), true
		}
	case bool:
		if y, ok := b.(bool); ok {
			if x == y {
				return 0, true
			}
			if !x {
				return -1, true
			}
			return 1, true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func toInt64(v any) (int64, bool) {
	f, ok := toFloat(v)
	return int64(f), ok
}

// like supports % as a wildcard for any run of characters, case-insensitively.
func like(s, pattern string) bool {
	s, pattern = strings.ToLower(s), strings.ToLower(pattern)
	parts := strings.Split(pattern, "%")
	if len(parts) == 1 {
		return s == pattern
	}
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	last := parts[len(parts)-1]
	for _, p := range parts[1 : len(parts)-1] {
		i := strings.Index(s, p)
		if i < 0 {
			return false
		}
		s = s[i+len(p):]
	}
	return strings.HasSuffix(s, last)
}
