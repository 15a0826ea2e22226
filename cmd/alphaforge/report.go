package main

import (
	"fmt"

	"alphaforge/internal/usage"

	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the template usage report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := usage.NewStore(cfg.UsagePath())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), store.Snapshot().Document())
			return nil
		},
	}
}
