// Package scope confines data access to the tenant bound to the request.
//
// A BaseRepository runs queries as written. A Guard wraps any Repository
// and adds "tenant_id = <current tenant>" to every read, update and delete,
// and stamps the tenant id on inserts. The tenant comes from
// tenant.IDFromContext unless another source is configured.
//
//	users, _ := scope.NewRepository(exec, scope.Model{Table: "users"})
//	guarded := scope.NewGuard(users, scope.Strict())
//
//	row, err := guarded.Find(ctx, 5)
//	// SELECT * FROM users WHERE id = 5 AND tenant_id = <ctx tenant> LIMIT 1
//
// Cross-tenant access goes through WithoutScope, which hands back the
// wrapped repository. Models marked Global are never filtered.
//
// Without a tenant in the context the Guard passes queries through
// unchanged. Strict guards return ErrNoTenant instead.
package scope
