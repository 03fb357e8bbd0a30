package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/tenancy/internal/user"
	"github.com/dmitrymomot/tenancy/pkg/httpserver"
	"github.com/dmitrymomot/tenancy/pkg/logger"
	"github.com/dmitrymomot/tenancy/pkg/pg"
	"github.com/dmitrymomot/tenancy/pkg/scope"
	"github.com/dmitrymomot/tenancy/pkg/tenant"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			identify, err := cfg.Tenant.Identifier()
			if err != nil {
				return err
			}

			db, err := openDatabase(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			cache, checks, err := openCache(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := cache.Close(); err != nil {
					log.Error("close tenant cache", logger.Error(err))
				}
			}()

			store := pg.NewTenantStore(db.db)
			resolver := tenant.NewResolver(identify, store,
				append(cfg.Tenant.ResolverOptions(),
					tenant.WithCache(cache),
					tenant.WithResolverLogger(log),
				)...,
			)
			manager := tenant.NewManager(store,
				tenant.WithManagerResolver(resolver),
				tenant.WithManagerLogger(log),
			)
			users, err := user.NewRepository(pg.NewExecutor(db.db),
				scope.WithStrict(cfg.Tenant.StrictScope),
				scope.WithLogger(log),
			)
			if err != nil {
				return err
			}

			router, err := newRouter(routerDeps{
				cfg:        cfg.Tenant,
				adminToken: cfg.AdminToken,
				resolver:   resolver,
				manager:    manager,
				users:      users,
				checks:     append([]httpserver.Check{{Name: "postgres", Run: pg.Healthcheck(db.pool)}}, checks...),
				logger:     log,
			})
			if err != nil {
				return err
			}

			log.InfoContext(ctx, "starting tenantd",
				logger.Component("tenantd"),
				slog.String("mode", cfg.Tenant.Mode),
			)
			return httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log)).Run(ctx, router)
		},
	}
}
