// Package logger builds *slog.Logger instances for the tenancy service.
//
// New applies functional options (format, level, static attributes) and wraps
// the resulting handler with a decorator that pulls request-scoped values out
// of context.Context on every record. Registering tenant.LoggerExtractor and
// requestid.LoggerExtractor makes every log line emitted with a request
// context carry tenant_id, tenant_slug and request_id without call sites
// passing them explicitly:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "tenantd"),
//		logger.WithContextExtractors(
//			requestid.LoggerExtractor(),
//			tenant.LoggerExtractor(),
//		),
//	)
//	log.InfoContext(r.Context(), "user created", logger.Component("user"))
//
// Attribute helpers (Error, TenantID, Outcome, ...) return the zero slog.Attr
// for nil input, which slog drops, so callers can log optional values without
// a nil check.
package logger
