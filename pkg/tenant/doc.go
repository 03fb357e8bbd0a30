// Package tenant resolves the tenant of each HTTP request and carries it
// through the request context.
//
// A request names its tenant in one of three ways, selected by Mode:
//
//   - subdomain: "acme.example.com" names "acme"
//   - path: "/acme/dashboard" names "acme"
//   - header: "X-TENANT-ID: acme" names "acme"
//
// The Resolver looks the candidate slug up in a Store, through an optional
// Cache, and classifies the attempt with an Outcome. Only active tenants
// resolve. Store failures are reported separately from "not found" so
// callers can tell an outage from a bad URL.
//
// # Usage
//
//	id, _ := tenant.NewIdentifier(tenant.ModeSubdomain, "", "example.com")
//	resolver := tenant.NewResolver(id, store,
//		tenant.WithCache(tenant.NewMemoryCache(1000)),
//		tenant.WithSkipPaths("/api/health", "/login"),
//	)
//	router.Use(tenant.Middleware(resolver,
//		tenant.WithOnboardingRedirect("/onboarding/choose-tenant"),
//	))
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		id, ok := tenant.IDFromContext(r.Context())
//		...
//	}
//
// The middleware installs a fresh RequestContext per request and clears it
// when the handler returns. Code outside HTTP (jobs, CLIs) binds a tenant
// with WithTenant.
//
// # Caching
//
// MemoryCache, RistrettoCache and RedisCache implement Cache. Share the
// same Cache with a Manager so status and settings changes evict the stale
// entry immediately.
//
// # Provisioning
//
// Manager creates tenants with unique slugs, switches status and merges
// settings. LoadSeed reads tenants from a YAML document for Manager.Seed.
package tenant
