package tenant

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// MemoryStore is a ProvisioningStore kept in process memory.
// Useful for tests and single-node demos.
type MemoryStore struct {
	mu      sync.RWMutex
	tenants map[int64]*Tenant
	nextID  int64
	now     func() time.Time
}

func NewMemoryStore(seed ...*Tenant) *MemoryStore {
	s := &MemoryStore{
		tenants: make(map[int64]*Tenant),
		now:     time.Now,
	}
	for _, t := range seed {
		c := t.Clone()
		if c.ID == 0 {
			s.nextID++
			c.ID = s.nextID
		}
		s.nextID = max(s.nextID, c.ID)
		s.tenants[c.ID] = c
	}
	return s
}

func (s *MemoryStore) FindBySlug(_ context.Context, slug string) (*Tenant, error) {
	return s.find(func(t *Tenant) bool { return t.Slug == slug })
}

func (s *MemoryStore) FindByDomain(_ context.Context, domain string) (*Tenant, error) {
	if domain == "" {
		return nil, ErrTenantNotFound
	}
	return s.find(func(t *Tenant) bool { return strings.EqualFold(t.Domain, domain) })
}

func (s *MemoryStore) FindByID(_ context.Context, id int64) (*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t, ok := s.tenants[id]; ok {
		return t.Clone(), nil
	}
	return nil, ErrTenantNotFound
}

func (s *MemoryStore) Create(_ context.Context, t *Tenant) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.tenants {
		if existing.Slug == t.Slug {
			return 0, ErrSlugTaken
		}
		if t.Domain != "" && strings.EqualFold(existing.Domain, t.Domain) {
			return 0, ErrDomainTaken
		}
	}

	s.nextID++
	c := t.Clone()
	c.ID = s.nextID
	now := s.now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	s.tenants[c.ID] = c

	t.ID, t.CreatedAt, t.UpdatedAt = c.ID, c.CreatedAt, c.UpdatedAt
	return c.ID, nil
}

func (s *MemoryStore) Update(_ context.Context, id int64, ch Changes) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenants[id]
	if !ok {
		return false, nil
	}

	for _, other := range s.tenants {
		if other.ID == id {
			continue
		}
		if ch.Slug != nil && other.Slug == *ch.Slug {
			return false, ErrSlugTaken
		}
		if ch.Domain != nil && *ch.Domain != "" && strings.EqualFold(other.Domain, *ch.Domain) {
			return false, ErrDomainTaken
		}
	}

	c := t.Clone()
	if ch.Name != nil {
		c.Name = *ch.Name
	}
	if ch.Slug != nil {
		c.Slug = *ch.Slug
	}
	if ch.Domain != nil {
		c.Domain = *ch.Domain
	}
	if ch.Status != nil {
		c.Status = *ch.Status
	}
	if ch.Settings != nil {
		c.Settings = ch.Settings.Clone()
	}
	c.UpdatedAt = s.now().UTC()
	s.tenants[id] = c
	return true, nil
}

func (s *MemoryStore) List(_ context.Context, f ListFilter) ([]*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(f.Search)
	out := make([]*Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Name), search) &&
			!strings.Contains(t.Slug, search) {
			continue
		}
		out = append(out, t.Clone())
	}
	slices.SortFunc(out, func(a, b *Tenant) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*Tenant{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryStore) CountByStatus(context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	for _, t := range s.tenants {
		st.Total++
		switch t.Status {
		case StatusActive:
			st.Active++
		case StatusInactive:
			st.Inactive++
		case StatusSuspended:
			st.Suspended++
		}
	}
	return st, nil
}

func (s *MemoryStore) find(match func(*Tenant) bool) (*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tenants {
		if match(t) {
			return t.Clone(), nil
		}
	}
	return nil, ErrTenantNotFound
}
