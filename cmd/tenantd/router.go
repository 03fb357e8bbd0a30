package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/tenancy/internal/admin"
	"github.com/dmitrymomot/tenancy/internal/httpjson"
	"github.com/dmitrymomot/tenancy/internal/user"
	"github.com/dmitrymomot/tenancy/pkg/httpserver"
	"github.com/dmitrymomot/tenancy/pkg/requestid"
	"github.com/dmitrymomot/tenancy/pkg/tenant"
)

type routerDeps struct {
	cfg        tenant.Config
	adminToken string
	resolver   *tenant.Resolver
	manager    *tenant.Manager
	users      *user.Repository
	checks     []httpserver.Check
	logger     *slog.Logger
}

func newRouter(d routerDeps) (http.Handler, error) {
	mode, err := tenant.ParseMode(d.cfg.Mode)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware, middleware.RealIP, middleware.Recoverer)

	r.Get("/api/health", httpserver.HealthCheckHandler(d.logger))
	r.Get("/api/health/ready", httpserver.HealthCheckHandler(d.logger, d.checks...))

	adm := admin.NewHandler(d.manager,
		admin.WithTenantURL(admin.TenantURL(mode, d.cfg.BaseDomain)),
		admin.WithLogger(d.logger),
	)
	r.Mount("/onboarding", adm.OnboardingRoutes())
	if d.adminToken != "" {
		r.With(admin.RequireToken(d.adminToken)).Mount("/admin/tenants", adm.Routes())
	}

	scoped := func(r chi.Router) {
		r.Use(tenant.Middleware(d.resolver,
			tenant.WithOnboardingRedirect(d.cfg.OnboardingURL),
			tenant.WithMiddlewareLogger(d.logger),
		))
		r.Get("/tenant", currentTenant)
		r.Mount("/users", user.NewHandler(d.users, d.logger).Routes())
	}
	if mode == tenant.ModePath {
		r.Route("/{tenant}", scoped)
	} else {
		r.Group(scoped)
	}
	return r, nil
}

func currentTenant(w http.ResponseWriter, r *http.Request) {
	info, ok := tenant.FromContext(r.Context())
	if !ok {
		httpjson.Error(w, r, nil, tenant.ErrNoTenantInContext)
		return
	}
	httpjson.Write(w, http.StatusOK, info, nil)
}
