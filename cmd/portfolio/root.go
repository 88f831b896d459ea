package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/tendant/simple-portfolio/pkg/portfolio/config"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.ServerConfig
	configErr  error
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.ServerConfig, error) {
	c.configOnce.Do(func() {
		source := config.WithEnv()
		if path := strings.TrimSpace(*c.configFlag); path != "" {
			source = config.WithFile(path)
		}
		cfg, err := config.Load(source)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.logger = newLogger(cfg)
		slog.SetDefault(c.logger)
	})
	return c.config, c.configErr
}

func newRootCommand() *cobra.Command {
	var configFlag string
	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "portfolio",
		Short:         "Bilingual video editing portfolio: site, REST API and admin tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (YAML, TOML, JSON or .env)")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newAdminCommand(ctx))
	rootCmd.AddCommand(newUploadCommand(ctx))
	return rootCmd
}
