package tenant

import (
	"log/slog"
	"time"
)

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCache sets the tenant cache. The default caches nothing.
func WithCache(c Cache) ResolverOption {
	return func(r *Resolver) {
		if c != nil {
			r.cache = c
		}
	}
}

// WithCacheTTL sets how long resolved tenants stay cached.
func WithCacheTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		if ttl > 0 {
			r.cacheTTL = ttl
		}
	}
}

// WithLookupTimeout bounds each store lookup shared by concurrent misses.
func WithLookupTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.lookupTimeout = d
		}
	}
}

// WithSkipPaths exempts requests for each path and everything below it.
func WithSkipPaths(paths ...string) ResolverOption {
	return func(r *Resolver) {
		for _, p := range paths {
			if p != "" {
				r.skipPaths = append(r.skipPaths, p)
			}
		}
	}
}

func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	errorHandler      ErrorHandler
	unresolvedHandler ErrorHandler
	optional          bool
	logger            *slog.Logger
}

// WithErrorHandler handles store failures. The default responds 500.
func WithErrorHandler(h ErrorHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithUnresolvedHandler handles requests that did not resolve to an active
// tenant. The error is ErrUnresolved, ErrTenantNotFound or ErrInactiveTenant.
func WithUnresolvedHandler(h ErrorHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.unresolvedHandler = h
		}
	}
}

// WithOnboardingRedirect sends unresolved requests to url.
func WithOnboardingRedirect(url string) MiddlewareOption {
	return WithUnresolvedHandler(RedirectHandler(url))
}

// WithOptional lets requests that name no tenant through without one.
// Unknown and inactive tenants are still rejected.
func WithOptional() MiddlewareOption {
	return func(c *middlewareConfig) { c.optional = true }
}

func WithMiddlewareLogger(l *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
