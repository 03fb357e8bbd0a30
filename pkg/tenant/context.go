package tenant

import (
	"context"
	"log/slog"
	"sync"
)

type contextKey struct{}

// Info is the tenant snapshot bound to a request.
type Info struct {
	ID       int64    `json:"id"`
	Slug     string   `json:"slug"`
	Name     string   `json:"name"`
	Settings Settings `json:"settings"`
}

// RequestContext holds the tenant bound to one request. The middleware
// installs an empty one before resolution and clears it when the request
// ends, so nothing leaks into the next request served by the same goroutine.
type RequestContext struct {
	mu   sync.RWMutex
	info Info
	set  bool
}

// Set binds t; a nil tenant clears the context.
func (c *RequestContext) Set(t *Tenant) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t == nil {
		c.info, c.set = Info{}, false
		return
	}
	c.info = Info{
		ID:       t.ID,
		Slug:     t.Slug,
		Name:     t.Name,
		Settings: t.Settings.Clone(),
	}
	c.set = true
}

// Clear drops the bound tenant. Safe to call more than once.
func (c *RequestContext) Clear() {
	c.Set(nil)
}

// Info returns a copy of the bound tenant.
func (c *RequestContext) Info() (Info, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.set {
		return Info{}, false
	}
	info := c.info
	info.Settings = c.info.Settings.Clone()
	return info, true
}

// ID returns the bound tenant id; 0 and false when empty.
func (c *RequestContext) ID() (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.info.ID, c.set && c.info.ID != 0
}

// NewRequestContext installs a fresh, empty RequestContext.
func NewRequestContext(ctx context.Context) (context.Context, *RequestContext) {
	rc := &RequestContext{}
	return context.WithValue(ctx, contextKey{}, rc), rc
}

// EnsureRequestContext reuses the RequestContext already in ctx or installs one.
func EnsureRequestContext(ctx context.Context) (context.Context, *RequestContext) {
	if rc, ok := RequestContextFrom(ctx); ok {
		return ctx, rc
	}
	return NewRequestContext(ctx)
}

func RequestContextFrom(ctx context.Context) (*RequestContext, bool) {
	rc, ok := ctx.Value(contextKey{}).(*RequestContext)
	return rc, ok && rc != nil
}

// WithTenant returns a context bound to t, for background jobs and tests.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	ctx, rc := NewRequestContext(ctx)
	rc.Set(t)
	return ctx
}

// FromContext returns the bound tenant snapshot.
func FromContext(ctx context.Context) (Info, bool) {
	rc, ok := RequestContextFrom(ctx)
	if !ok {
		return Info{}, false
	}
	return rc.Info()
}

// IDFromContext returns the bound tenant id; false when none is bound.
func IDFromContext(ctx context.Context) (int64, bool) {
	rc, ok := RequestContextFrom(ctx)
	if !ok {
		return 0, false
	}
	return rc.ID()
}

// MustIDFromContext panics when no tenant is bound. Use it only behind
// RequireTenant.
func MustIDFromContext(ctx context.Context) int64 {
	id, ok := IDFromContext(ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return id
}

func SlugFromContext(ctx context.Context) string {
	info, _ := FromContext(ctx)
	return info.Slug
}

// SettingsFromContext returns a copy of the bound tenant's settings.
func SettingsFromContext(ctx context.Context) Settings {
	info, ok := FromContext(ctx)
	if !ok || info.Settings == nil {
		return Settings{}
	}
	return info.Settings
}

// Setting reads one setting of the bound tenant, or def.
func Setting(ctx context.Context, key string, def Value) Value {
	rc, ok := RequestContextFrom(ctx)
	if !ok {
		return def
	}
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	if !rc.set {
		return def
	}
	return rc.info.Settings.Get(key, def)
}

// LoggerExtractor adds tenant_id to log records.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.Int64("tenant_id", id), true
		}
		return slog.Attr{}, false
	}
}

// SlugLoggerExtractor adds tenant_slug to log records.
func SlugLoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if slug := SlugFromContext(ctx); slug != "" {
			return slog.String("tenant_slug", slug), true
		}
		return slog.Attr{}, false
	}
}
