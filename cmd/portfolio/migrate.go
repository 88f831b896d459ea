package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/tendant/simple-portfolio/pkg/portfolio/config"
	"github.com/tendant/simple-portfolio/pkg/portfolio/migrations"
)

var errNoDatabase = errors.New("migrations need a postgres DATABASE_URL")

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return withMigrationDB(cmd.Context(), cfg, func(pool *pgxpool.Pool) error {
				if err := cfg.EnsureSchema(cmd.Context(), pool); err != nil {
					return err
				}
				if err := migrations.MigrateUp(config.OpenDB(pool), cfg.DBSchema); err != nil {
					return err
				}
				st, err := migrations.ReadStatus(config.OpenDB(pool), cfg.DBSchema)
				if err != nil {
					return err
				}
				ctx.logger.Info("migrations applied", "schema", cfg.DBSchema, "version", st.Current)
				fmt.Fprintf(cmd.OutOrStdout(), "schema %s at version %d\n", cfg.DBSchema, st.Current)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied and latest schema versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return withMigrationDB(cmd.Context(), cfg, func(pool *pgxpool.Pool) error {
				st, err := migrations.ReadStatus(config.OpenDB(pool), cfg.DBSchema)
				if err != nil {
					return err
				}
				state := "up to date"
				switch {
				case st.Dirty:
					state = "dirty"
				case st.Pending():
					state = fmt.Sprintf("%d pending", st.Latest-st.Current)
				case st.Current > st.Latest:
					state = "ahead of binary"
				}
				renderTable(cmd.OutOrStdout(),
					[]string{"Schema", "Current", "Latest", "State"},
					[][]string{{cfg.DBSchema, fmt.Sprint(st.Current), fmt.Sprint(st.Latest), state}},
					nil,
				)
				return nil
			})
		},
	})
	return cmd
}

func withMigrationDB(ctx context.Context, cfg *config.ServerConfig, fn func(*pgxpool.Pool) error) error {
	if cfg.DatabaseType != "postgres" {
		return errNoDatabase
	}
	pool, err := cfg.BuildPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := config.PingPostgres(ctx, pool); err != nil {
		return err
	}
	return fn(pool)
}
