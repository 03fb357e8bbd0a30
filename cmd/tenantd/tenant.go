package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/tenancy/pkg/pg"
	"github.com/dmitrymomot/tenancy/pkg/tenant"
)

func newTenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Provision and manage tenants",
	}
	cmd.AddCommand(newTenantCreateCmd(), newTenantSeedCmd(), newTenantStatusCmd(), newTenantListCmd())
	return cmd
}

func newTenantCreateCmd() *cobra.Command {
	var p tenant.CreateParams
	var status string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p.Status = tenant.Status(strings.ToLower(status))
			return withManager(cmd.Context(), func(ctx context.Context, m *tenant.Manager) error {
				t, err := m.Create(ctx, p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created tenant %d (%s)\n", t.ID, t.Slug)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&p.Name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&p.Slug, "slug", "", "slug; derived from the name when empty")
	cmd.Flags().StringVar(&p.Domain, "domain", "", "custom domain")
	cmd.Flags().StringVar(&status, "status", "", "initial status (active, inactive, suspended)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newTenantSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Create tenants listed in a YAML file, skipping existing slugs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := tenant.LoadSeedFile(args[0])
			if err != nil {
				return err
			}
			return withManager(cmd.Context(), func(ctx context.Context, m *tenant.Manager) error {
				n, err := m.Seed(ctx, params)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d of %d tenants\n", n, len(params))
				return nil
			})
		},
	}
}

func newTenantStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id|slug> <active|inactive|suspended>",
		Short: "Change the status of a tenant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := tenant.ParseStatus(args[1])
			if err != nil {
				return err
			}
			return withManager(cmd.Context(), func(ctx context.Context, m *tenant.Manager) error {
				t, err := lookupTenant(ctx, m, args[0])
				if err != nil {
					return err
				}
				if err := m.SetStatus(ctx, t.ID, status); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "tenant %s is %s\n", t.Slug, status)
				return nil
			})
		},
	}
}

func newTenantListCmd() *cobra.Command {
	var f tenant.ListFilter
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tenants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if status != "" {
				st, err := tenant.ParseStatus(status)
				if err != nil {
					return err
				}
				f.Status = st
			}
			return withManager(cmd.Context(), func(ctx context.Context, m *tenant.Manager) error {
				tenants, err := m.List(ctx, f)
				if err != nil {
					return err
				}
				return printTenants(cmd.OutOrStdout(), tenants)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&f.Search, "search", "", "match name or slug")
	cmd.Flags().IntVar(&f.Limit, "limit", 50, "maximum rows")
	return cmd
}

// withManager opens the database for one CLI call. A shared redis cache is
// wired in so that changes made here evict stale entries used by servers.
func withManager(ctx context.Context, fn func(context.Context, *tenant.Manager) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := []tenant.ManagerOption{tenant.WithManagerLogger(log)}
	if strings.EqualFold(cfg.Tenant.Cache, tenant.CacheRedis) {
		cache, _, err := openCache(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer cache.Close()
		opts = append(opts, tenant.WithManagerCache(cache))
	}
	return fn(ctx, tenant.NewManager(pg.NewTenantStore(db.db), opts...))
}

func lookupTenant(ctx context.Context, m *tenant.Manager, ref string) (*tenant.Tenant, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return m.Get(ctx, id)
	}
	return m.GetBySlug(ctx, ref)
}

func printTenants(w io.Writer, tenants []*tenant.Tenant) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSLUG\tNAME\tSTATUS\tDOMAIN")
	for _, t := range tenants {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Slug, t.Name, t.Status, t.Domain)
	}
	return tw.Flush()
}
