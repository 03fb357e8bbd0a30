package logger

import (
	"log/slog"
	"time"
)

// Error records err under "error"; nil yields an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// TenantID records a tenant id; zero yields an empty Attr.
func TenantID(id int64) slog.Attr {
	if id == 0 {
		return slog.Attr{}
	}
	return slog.Int64("tenant_id", id)
}

// TenantSlug records a tenant slug; empty yields an empty Attr.
func TenantSlug(slug string) slog.Attr {
	if slug == "" {
		return slog.Attr{}
	}
	return slog.String("tenant_slug", slug)
}

// Outcome records a resolution outcome name.
func Outcome(o string) slog.Attr {
	return slog.String("outcome", o)
}

func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Table(name string) slog.Attr {
	return slog.String("table", name)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
