package main

import (
	"context"
	"os/signal"
	"syscall"

	"alphaforge/internal/app"
	"alphaforge/internal/logger"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the recommendation and gate HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			logger.Infof("alphaforge starting (env=%s addr=%s)", cfg.App.Env, cfg.Server.Addr)
			return a.Run(ctx)
		},
	}
}
