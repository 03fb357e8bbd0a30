// Package pg connects to PostgreSQL through pgx/v5, runs goose migrations,
// and provides the SQL implementations of scope.Executor and
// tenant.ProvisioningStore.
//
// Connect opens a *pgxpool.Pool with retries. OpenDB bridges that pool to
// database/sql, which is what Migrate, NewExecutor and NewTenantStore take:
//
//	pool, err := pg.Connect(ctx, cfg, log)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	db := pg.OpenDB(pool)
//	if err := pg.Migrate(ctx, db, migrations.FS, cfg, log, pg.MigrateUp); err != nil {
//		return err
//	}
//
//	store := pg.NewTenantStore(db)
//	users, _ := scope.NewRepository(pg.NewExecutor(db), scope.Model{Table: "users"})
//
// The executor quotes every identifier and rejects anything that is not a
// plain SQL name; values are always passed as positional arguments.
//
// Error helpers classify driver errors: IsNotFoundError matches both
// pgx.ErrNoRows and sql.ErrNoRows, IsDuplicateKeyError matches SQLSTATE
// 23505.
package pg
