package main

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/tenancy/internal/db/migrations"
	"github.com/dmitrymomot/tenancy/pkg/pg"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}
	for _, c := range []struct {
		name  string
		short string
		op    pg.MigrationCommand
	}{
		{"up", "Apply all pending migrations", pg.MigrateUp},
		{"down", "Roll back the latest migration", pg.MigrateDown},
		{"status", "Print the migration status", pg.MigrateStatus},
	} {
		cmd.AddCommand(&cobra.Command{
			Use:   c.name,
			Short: c.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				log := newLogger(cfg)

				db, err := openDatabase(cmd.Context(), cfg, log)
				if err != nil {
					return err
				}
				defer db.Close()

				return pg.Migrate(cmd.Context(), db.db, migrations.FS, cfg.PG, log, c.op)
			},
		})
	}
	return cmd
}
