package main

import (
	"encoding/json"
	"fmt"
	"os"

	"alphaforge/internal/gate"

	"github.com/spf13/cobra"
)

// Gate exit codes. Distinct codes let shell pipelines branch on the
// decision without parsing output.
const (
	exitConditionalGo = 2
	exitNoGo          = 3
)

func newGateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gate <validation.json> <duplicates.json> <diversity.json>",
		Short: "Evaluate the phase gate from three report files",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports := make([]json.RawMessage, 3)
			for i, path := range args {
				raw, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read report %s failed: %w", path, err)
				}
				reports[i] = raw
			}
			report, err := gate.Evaluate(reports[0], reports[1], reports[2])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Document())
			switch report.Decision {
			case gate.DecisionConditionalGo:
				os.Exit(exitConditionalGo)
			case gate.DecisionNoGo:
				os.Exit(exitNoGo)
			}
			return nil
		},
	}
}
