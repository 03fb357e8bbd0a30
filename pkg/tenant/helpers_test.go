package tenant_test

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/dmitrymomot/tenancy/pkg/tenant"
)

func newTenant(id int64, slug string, status tenant.Status) *tenant.Tenant {
	return &tenant.Tenant{
		ID:       id,
		Name:     slug + " corp",
		Slug:     slug,
		Status:   status,
		Settings: tenant.Settings{"theme": tenant.StringValue(slug + "-theme")},
	}
}

// countingStore counts FindBySlug calls.
type countingStore struct {
	tenant.Store
	calls atomic.Int64
}

func (s *countingStore) FindBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	s.calls.Add(1)
	return s.Store.FindBySlug(ctx, slug)
}

var errDown = errors.New("connection refused")

type failingStore struct{ tenant.Store }

func (failingStore) FindBySlug(context.Context, string) (*tenant.Tenant, error) {
	return nil, errDown
}

// blockingStore reads from Store, then holds the result until release is
// closed or ctx ends. entered receives once per read that reaches the hold.
type blockingStore struct {
	tenant.Store
	entered chan struct{}
	release chan struct{}
}

func newBlockingStore(s tenant.Store) *blockingStore {
	return &blockingStore{Store: s, entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (s *blockingStore) FindBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	t, err := s.Store.FindBySlug(ctx, slug)
	select {
	case s.entered <- struct{}{}:
	default:
	}
	select {
	case <-s.release:
		return t, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// updateCountingStore counts Update calls that reach the store.
type updateCountingStore struct {
	tenant.ProvisioningStore
	updates atomic.Int64
}

func (s *updateCountingStore) Update(ctx context.Context, id int64, ch tenant.Changes) (bool, error) {
	s.updates.Add(1)
	return s.ProvisioningStore.Update(ctx, id, ch)
}
