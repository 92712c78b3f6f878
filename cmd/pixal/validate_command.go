package main

import (
	"github.com/spf13/cobra"

	"pixal/internal/artifacts"
	"pixal/internal/validation"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check rendered shorts against platform limits",
		Long:  "Validate probes every rendered short, writes the validation report, and exits non-zero when any clip is invalid.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			gate := validation.NewGate(cfg, artifacts.NewStore(cfg), nil, logger)
			report, err := gate.ValidateAll(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else if err := validation.WriteSummary(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			return report.Err()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report as JSON")
	return cmd
}
