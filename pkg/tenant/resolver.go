package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/tenancy/pkg/logger"
)

// Outcome classifies a resolution attempt.
type Outcome int

const (
	OutcomeUnresolved Outcome = iota
	OutcomeResolved
	OutcomeSkipped
	OutcomeNotFound
	OutcomeInactive
	OutcomeStoreUnavailable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeResolved:
		return "resolved"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeInactive:
		return "inactive"
	case OutcomeStoreUnavailable:
		return "store_unavailable"
	}
	return "unresolved"
}

// Result is the outcome of Resolve. Tenant is set only when Resolved.
type Result struct {
	Outcome   Outcome
	Candidate string
	Tenant    *Tenant
}

// Err maps the outcome to its sentinel error; nil when resolved or skipped.
func (r Result) Err() error {
	switch r.Outcome {
	case OutcomeResolved, OutcomeSkipped:
		return nil
	case OutcomeNotFound:
		return ErrTenantNotFound
	case OutcomeInactive:
		return ErrInactiveTenant
	case OutcomeStoreUnavailable:
		return ErrStoreUnavailable
	}
	return ErrUnresolved
}

const (
	// DefaultCacheTTL is how long a resolved tenant stays cached.
	DefaultCacheTTL = 5 * time.Minute
	// DefaultLookupTimeout bounds one shared store lookup.
	DefaultLookupTimeout = 5 * time.Second
)

// Resolver maps requests to active tenants.
type Resolver struct {
	identify      Identifier
	store         Store
	cache         Cache
	cacheTTL      time.Duration
	lookupTimeout time.Duration
	skipPaths     []string
	logger        *slog.Logger
	group         singleflight.Group
	// epoch advances on every Invalidate; a lookup that started before
	// the bump must not leave its result cached.
	epoch atomic.Uint64
}

// NewResolver panics when identify or store is nil.
func NewResolver(identify Identifier, store Store, opts ...ResolverOption) *Resolver {
	if identify == nil || store == nil {
		panic("tenant: resolver requires an identifier and a store")
	}
	r := &Resolver{
		identify: identify,
		store:    store,
		cache:    NewNoOpCache(),
		cacheTTL:      DefaultCacheTTL,
		lookupTimeout: DefaultLookupTimeout,
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Skips reports whether path is exempt from tenant resolution. A skip path
// matches itself and everything below it: "/login" skips "/login" and
// "/login/callback" but not "/loginhistory".
func (r *Resolver) Skips(path string) bool {
	for _, p := range r.skipPaths {
		base := strings.TrimSuffix(p, "/")
		if path == p || path == base || strings.HasPrefix(path, base+"/") {
			return true
		}
	}
	return false
}

// Resolve identifies the tenant named by req. The returned error is non-nil
// only when the store failed; every other outcome is reported in Result.
func (r *Resolver) Resolve(req *http.Request) (Result, error) {
	if req.URL != nil && r.Skips(req.URL.Path) {
		return Result{Outcome: OutcomeSkipped}, nil
	}

	candidate := r.identify(req)
	if candidate == "" {
		return Result{Outcome: OutcomeUnresolved}, nil
	}

	t, err := r.Lookup(req.Context(), candidate)
	switch {
	case errors.Is(err, ErrTenantNotFound):
		return Result{Outcome: OutcomeNotFound, Candidate: candidate}, nil
	case err != nil:
		return Result{Outcome: OutcomeStoreUnavailable, Candidate: candidate}, err
	case !t.IsActive():
		return Result{Outcome: OutcomeInactive, Candidate: candidate}, nil
	}
	return Result{Outcome: OutcomeResolved, Candidate: candidate, Tenant: t}, nil
}

// Lookup loads a tenant by slug through the cache. Concurrent misses for the
// same slug share one store query, which runs detached from any single
// caller and is bounded by the lookup timeout. A caller whose ctx ends first
// gets ctx.Err() while the others keep waiting. Inactive tenants are
// returned as found.
func (r *Resolver) Lookup(ctx context.Context, slug string) (*Tenant, error) {
	if t, ok := r.cache.Get(ctx, slug); ok {
		return t, nil
	}

	ch := r.group.DoChan(slug, func() (any, error) {
		return r.load(context.WithoutCancel(ctx), slug)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}

	if err := res.Err; err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		r.logger.ErrorContext(ctx, "tenant lookup failed",
			logger.Component("tenant.resolver"), logger.TenantSlug(slug), logger.Error(err))
		return nil, errors.Join(ErrStoreUnavailable, fmt.Errorf("find tenant %q: %w", slug, err))
	}
	return res.Val.(*Tenant).Clone(), nil
}

func (r *Resolver) load(ctx context.Context, slug string) (*Tenant, error) {
	ctx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()

	epoch := r.epoch.Load()
	t, err := r.store.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTenantNotFound
	}
	r.cache.Set(ctx, slug, t, r.cacheTTL)
	if r.epoch.Load() != epoch {
		r.cache.Delete(ctx, slug)
	}
	return t, nil
}

// Invalidate evicts slug so the next request reloads it. A lookup already in
// flight does not re-cache what it read. The guarantee covers this process;
// other processes sharing a remote cache are bounded by the cache TTL.
func (r *Resolver) Invalidate(ctx context.Context, slug string) {
	r.epoch.Add(1)
	r.cache.Delete(ctx, slug)
}

// Cache exposes the resolver cache so a Manager can share it.
func (r *Resolver) Cache() Cache {
	return r.cache
}
