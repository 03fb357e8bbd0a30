// Package admin serves tenant onboarding and administration over HTTP:
// the choose-tenant list, provisioning, status transitions and settings.
package admin

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/tenancy/internal/httpjson"
	"github.com/dmitrymomot/tenancy/pkg/logger"
	"github.com/dmitrymomot/tenancy/pkg/tenant"
)

const maxListLimit = 100

// URLFunc builds the entry URL of a tenant for the choose-tenant list.
type URLFunc func(slug string) string

type Handler struct {
	manager   *tenant.Manager
	tenantURL URLFunc
	logger    *slog.Logger
}

type Option func(*Handler)

func WithTenantURL(fn URLFunc) Option {
	return func(h *Handler) {
		if fn != nil {
			h.tenantURL = fn
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

func NewHandler(m *tenant.Manager, opts ...Option) *Handler {
	h := &Handler{
		manager:   m,
		tenantURL: func(slug string) string { return "/" + slug + "/" },
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// TenantURL derives the entry URL from the resolution mode: a subdomain of
// baseDomain, a path prefix, or nothing for header mode.
func TenantURL(mode tenant.Mode, baseDomain string) URLFunc {
	switch mode {
	case tenant.ModeSubdomain:
		if baseDomain == "" {
			break
		}
		return func(slug string) string { return "//" + slug + "." + baseDomain + "/" }
	case tenant.ModePath:
		return func(slug string) string { return "/" + slug + "/" }
	}
	return func(string) string { return "" }
}

// OnboardingRoutes mounts under /onboarding, outside tenant resolution.
func (h *Handler) OnboardingRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/choose-tenant", h.chooseTenant)
	return r
}

// Routes mounts under /admin/tenants.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/stats", h.stats)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Patch("/", h.update)
		r.Put("/status", h.setStatus)
		r.Get("/settings", h.settings)
		r.Patch("/settings", h.updateSettings)
	})
	return r
}

type choice struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	URL  string `json:"url,omitempty"`
}

func (h *Handler) chooseTenant(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.manager.ListActive(r.Context())
	if err != nil {
		httpjson.Error(w, r, h.logger, err)
		return
	}
	out := make([]choice, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, choice{Name: t.Name, Slug: t.Slug, URL: h.tenantURL(t.Slug)})
	}

	var meta map[string]any
	if reason := r.URL.Query().Get("error"); reason != "" {
		meta = map[string]any{"error": reason}
	}
	httpjson.Write(w, http.StatusOK, out, meta)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := tenant.ListFilter{Search: q.Get("search"), Limit: 20}
	if s := q.Get("status"); s != "" {
		st, err := tenant.ParseStatus(s)
		if err != nil {
			httpjson.Error(w, r, h.logger, err)
			return
		}
		f.Status = st
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		f.Limit = min(n, maxListLimit)
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n > 0 {
		f.Offset = n
	}

	tenants, err := h.manager.List(r.Context(), f)
	if err != nil {
		httpjson.Error(w, r, h.logger, err)
		return
	}
	httpjson.Write(w, http.StatusOK, tenants, map[string]any{"limit": f.Limit, "offset": f.Offset})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var p tenant.CreateParams
	if err := httpjson.Decode(r, &p); err != nil {
		httpjson.Error(w, r, h.logger, err)
		return
	}
	t, err := h.manager.Create(r.Context(), p)
	if err != nil {
		httpjson.Error(w, r, h.logger, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, t, nil)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.manager.Stats(r.Context())
	if err != nil {
		httpjson.Error(w, r, h.logger, err)
		return
	}
	httpjson.Write(w, http.StatusOK, s, nil)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}
	t, err := h.manager.Get(r.Context(), id)
	if err != nil {
		httpjson.Error(w, r, h.logger, err)
		return
	}
	httpjson.Write(w, http.StatusOK, t, nil)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}
	var p tenant.UpdateParams
	if err := httpjson.Decode(r, &p); err != nil {
		httpjson.Error(w, r, h.logger, err)
		return
	}
	t, err := h.manager.Update(r.Context(), id, p)
	if err != nil {
		httpjson.Error(w, r, h.logger, err)
		return
	}
	httpjson.Write(w, http.StatusOK, t, nil)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}
	var body struct {
		Status tenant.Status `json:"status"`
	}
	if err := httpjson.Decode(r, &body); err != nil {
		httpjson.Error(w, r, h.logger, err)
		return
	}
	if err := h.manager.SetStatus(r.Context(), id, body.Status); err != nil {
		httpjson.Error(w, r, h.logger, err)
		return
	}
	t, err := h.manager.Get(r.Context(), id)
	if err != nil {
		httpjson.Error(w, r, h.logger, err)
		return
	}
	httpjson.Write(w, http.StatusOK, t, nil)
}

func (h *Handler) settings(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}
	t, err := h.manager.Get(r.Context(), id)
	if err != nil {
		httpjson.Error(w, r, h.logger, err)
		return
	}
	httpjson.Write(w, http.StatusOK, t.Settings, nil)
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}
	var s tenant.Settings
	if err := httpjson.Decode(r, &s); err != nil {
		httpjson.Error(w, r, h.logger, err)
		return
	}
	merged, err := h.manager.UpdateSettings(r.Context(), id, s)
	if err != nil {
		httpjson.Error(w, r, h.logger, err)
		return
	}
	httpjson.Write(w, http.StatusOK, merged, nil)
}

func tenantID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpjson.Error(w, r, nil, tenant.ErrTenantNotFound)
		return 0, false
	}
	return id, true
}
