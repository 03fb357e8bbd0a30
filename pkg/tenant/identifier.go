package tenant

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Mode selects where the tenant candidate is read from.
type Mode string

const (
	ModeSubdomain Mode = "subdomain"
	ModePath      Mode = "path"
	ModeHeader    Mode = "header"
)

// DefaultHeader carries the tenant slug in header mode.
const DefaultHeader = "X-TENANT-ID"

// ParseMode is case-insensitive; an empty string selects subdomain mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeSubdomain, nil
	case ModeSubdomain, ModePath, ModeHeader:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Identifier extracts a tenant candidate slug from a request.
// An empty string means the request names no tenant.
type Identifier func(r *http.Request) string

// NewIdentifier builds the identifier for mode. header is only used in
// header mode and falls back to DefaultHeader; baseDomain only in subdomain mode.
func NewIdentifier(mode Mode, header, baseDomain string) (Identifier, error) {
	switch mode {
	case ModeSubdomain, "":
		return SubdomainIdentifier(baseDomain), nil
	case ModePath:
		return PathIdentifier(), nil
	case ModeHeader:
		return HeaderIdentifier(header), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
}

// SubdomainIdentifier reads the left-most host label.
//
// With a base domain ("example.com") the host must be a subdomain of it:
// "acme.example.com" yields "acme" and "example.com" yields nothing. Without
// one the host needs at least three labels, so apex domains never resolve.
// "www" and IP hosts never name a tenant.
func SubdomainIdentifier(baseDomain string) Identifier {
	base := strings.Trim(strings.ToLower(strings.TrimSpace(baseDomain)), ".")

	return func(r *http.Request) string {
		host := normalizeHost(requestHost(r))
		if host == "" || net.ParseIP(host) != nil {
			return ""
		}

		var label string
		if base != "" {
			rest, ok := strings.CutSuffix(host, "."+base)
			if !ok || rest == "" {
				return ""
			}
			label, _, _ = strings.Cut(rest, ".")
		} else {
			labels := strings.Split(host, ".")
			if len(labels) < 3 {
				return ""
			}
			label = labels[0]
		}

		if label == "" || label == "www" {
			return ""
		}
		return label
	}
}

// PathIdentifier reads the first path segment: "/acme/dashboard" yields "acme".
func PathIdentifier() Identifier {
	return func(r *http.Request) string {
		if r.URL == nil {
			return ""
		}
		segment, _, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
		return strings.TrimSpace(segment)
	}
}

// HeaderIdentifier reads the named header, DefaultHeader when name is empty.
func HeaderIdentifier(name string) Identifier {
	if name == "" {
		name = DefaultHeader
	}
	return func(r *http.Request) string {
		return strings.TrimSpace(r.Header.Get(name))
	}
}

// CompositeIdentifier returns the first non-empty candidate.
func CompositeIdentifier(ids ...Identifier) Identifier {
	return func(r *http.Request) string {
		for _, id := range ids {
			if id == nil {
				continue
			}
			if c := id(r); c != "" {
				return c
			}
		}
		return ""
	}
}

func requestHost(r *http.Request) string {
	if r.Host != "" {
		return r.Host
	}
	if r.URL != nil {
		return r.URL.Host
	}
	return ""
}

func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	return strings.TrimSuffix(strings.ToLower(host), ".")
}
