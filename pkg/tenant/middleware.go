package tenant

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/tenancy/pkg/logger"
)

// ErrorHandler writes the response for a request the middleware rejects.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Middleware resolves the tenant for every request and binds it to the
// request context for the duration of the request.
func Middleware(resolver *Resolver, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		errorHandler:      defaultErrorHandler,
		unresolvedHandler: defaultErrorHandler,
		logger:            logger.Nop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, rc := NewRequestContext(r.Context())
			defer rc.Clear()
			r = r.WithContext(ctx)

			res, err := resolver.Resolve(r)
			if err != nil {
				if ctx.Err() != nil {
					cfg.logger.DebugContext(ctx, "request ended during tenant lookup",
						logger.Component("tenant.middleware"),
						logger.TenantSlug(res.Candidate), logger.Error(err))
					return
				}
				cfg.errorHandler(w, r, err)
				return
			}

			switch res.Outcome {
			case OutcomeResolved:
				rc.Set(res.Tenant)
				next.ServeHTTP(w, r)
				return
			case OutcomeSkipped:
				next.ServeHTTP(w, r)
				return
			case OutcomeUnresolved:
				if cfg.optional {
					next.ServeHTTP(w, r)
					return
				}
			}

			cfg.logger.InfoContext(ctx, "tenant not resolved",
				logger.Component("tenant.middleware"),
				logger.Outcome(res.Outcome.String()),
				logger.TenantSlug(res.Candidate),
			)
			cfg.unresolvedHandler(w, r, res.Err())
		})
	}
}

// RequireTenant rejects requests that reach it without a bound tenant.
// Pass nil to use the default error handler.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := IDFromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RedirectHandler sends the client to target with 303 See Other. Not-found
// and inactive tenants add an "error" query parameter naming the reason.
func RedirectHandler(target string) ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		u, perr := url.Parse(target)
		if perr != nil {
			defaultErrorHandler(w, r, err)
			return
		}
		if reason := redirectReason(err); reason != "" {
			q := u.Query()
			q.Set("error", reason)
			u.RawQuery = q.Encode()
		}
		http.Redirect(w, r, u.String(), http.StatusSeeOther)
	}
}

func redirectReason(err error) string {
	switch {
	case errors.Is(err, ErrTenantNotFound):
		return "tenant_not_found"
	case errors.Is(err, ErrInactiveTenant):
		return "tenant_inactive"
	}
	return ""
}

// StatusCode maps tenant errors to HTTP status codes.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrUnresolved):
		return http.StatusBadRequest
	case errors.Is(err, ErrTenantNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInactiveTenant):
		return http.StatusForbidden
	case errors.Is(err, ErrNoTenantInContext):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	code := StatusCode(err)
	msg := http.StatusText(code)
	switch code {
	case http.StatusBadRequest:
		msg = "Tenant not specified"
	case http.StatusNotFound:
		msg = "Tenant not found"
	case http.StatusForbidden:
		msg = "Tenant is inactive"
	case http.StatusUnauthorized:
		msg = "Tenant required"
	}
	http.Error(w, msg, code)
}
