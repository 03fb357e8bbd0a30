// Package slug turns display names into URL-safe identifiers.
//
// Tenant slugs double as subdomain labels and path segments, so the output is
// restricted to lowercase ASCII letters, digits and a single separator between
// words. Latin diacritics are folded to their base letter ("Café" → "cafe")
// using Unicode decomposition; any other rune becomes a word boundary.
//
//	slug.Make("Acme Inc.")        // "acme-inc"
//	slug.Make("Crème Brûlée Co")  // "creme-brulee-co"
//	slug.Numbered("acme-inc", 1)  // "acme-inc-1"
//
// Make is deterministic; uniqueness against a data store is the caller's job
// (see tenant.Manager).
package slug
