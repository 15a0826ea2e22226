package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"alphaforge/internal/config"
	"alphaforge/internal/logger"

	"github.com/spf13/cobra"
)

var cfgPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "alphaforge",
		Short:         "Strategy-template recommendation and phase-gate service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default $ALPHAFORGE_CONFIG or configs/config.yaml)")
	root.AddCommand(newServeCmd(), newGateCmd(), newReportCmd())
	return root
}

func loadConfig() (*config.Config, error) {
	path := strings.TrimSpace(cfgPath)
	if path == "" {
		path = os.Getenv("ALPHAFORGE_CONFIG")
	}
	if path == "" {
		path = "configs/config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := setupLogOutput(cfg.App.LogPath); err != nil {
		return nil, err
	}
	logger.SetLevel(cfg.App.LogLevel)
	return cfg, nil
}

func setupLogOutput(path string) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return fmt.Errorf("create log dir failed: %w", err)
	}
	f, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file failed: %w", err)
	}
	logger.SetOutput(f)
	return nil
}
