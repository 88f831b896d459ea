package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/admin"
	"github.com/tendant/simple-portfolio/pkg/portfolio/config"
	"github.com/tendant/simple-portfolio/pkg/portfolio/remote"
)

// remoteFlags select a running server instead of the configured store.
type remoteFlags struct {
	url      string
	password string
}

func (f *remoteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "remote", "", "Base URL of a running portfolio server (default: use the configured database)")
	cmd.Flags().StringVar(&f.password, "password", "", "Admin password for --remote (default: $PORTFOLIO_ADMIN_PASSWORD)")
}

func (f *remoteFlags) login(ctx context.Context, logger *slog.Logger) (*remote.Client, error) {
	password := f.password
	if password == "" {
		password = os.Getenv("PORTFOLIO_ADMIN_PASSWORD")
	}
	if password == "" {
		return nil, errors.New("--remote needs --password or PORTFOLIO_ADMIN_PASSWORD")
	}
	client, err := remote.New(f.url, remote.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := client.Login(ctx, password); err != nil {
		return nil, fmt.Errorf("login to %s: %w", f.url, err)
	}
	return client, nil
}

// openService returns a gateway over the configured repository, or over the
// remote server when --remote is set. The cleanup is never nil.
func openService(ctx context.Context, cfg *config.ServerConfig, flags *remoteFlags, logger *slog.Logger) (portfolio.Service, func(), error) {
	if flags.url != "" {
		client, err := flags.login(ctx, logger)
		if err != nil {
			return nil, func() {}, err
		}
		return client, func() {
			if err := client.Logout(context.Background()); err != nil {
				logger.Debug("logout failed", "err", err)
			}
		}, nil
	}

	repo, cleanup, err := cfg.BuildRepository(ctx)
	if err != nil {
		return nil, func() {}, err
	}
	if cfg.DatabaseType == "memory" {
		logger.Warn("DATABASE_URL not set, edits are kept in memory and lost on exit")
	}
	svc, err := cfg.BuildService(repo, portfolio.NewLoggingEventSink(logger), logger)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return svc, cleanup, nil
}

func newAdminCommand(ctx *commandContext) *cobra.Command {
	var flags remoteFlags
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Interactive shell for editing portfolio content",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			svc, cleanup, err := openService(cmd.Context(), cfg, &flags, ctx.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			editor := admin.NewEditor(svc, admin.WithLogger(ctx.logger))
			shell := NewAdminShell(editor, cmd.OutOrStdout())
			return shell.Run(cmd.Context(), cmd.InOrStdin())
		},
	}
	flags.register(cmd)
	return cmd
}
