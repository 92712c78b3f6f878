package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixal/internal/pipeline"
	"pixal/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var pingLLM bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check credentials, external binaries, and workspace access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report := preflight.RunAll(cmd.Context(), cfg, preflight.Options{PingLLM: pingLLM})

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(report.Results))
			for _, result := range report.Results {
				rows = append(rows, []string{result.Name, statusKindLabel(resultKind(result)), result.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))

			if logger, err := ctx.ensureLogger(); err == nil {
				fmt.Fprintln(out, renderSectionHeader("Stages", colorize))
				for _, health := range pipeline.New(cfg, logger, ctx.pipelineOptions...).Health(cmd.Context()) {
					kind := statusOK
					if !health.Ready {
						kind = statusWarn
					}
					fmt.Fprintln(out, renderStatusLine(health.Name, kind, health.Detail, colorize))
				}
			}

			failures := report.Failures()
			if len(failures) > 0 {
				fmt.Fprintln(out, renderStatusLine("Doctor", statusError,
					fmt.Sprintf("%d required check(s) failed", len(failures)), colorize))
				return fmt.Errorf("doctor: %d required check(s) failed", len(failures))
			}
			fmt.Fprintln(out, renderStatusLine("Doctor", statusOK, "ready to run", colorize))
			return nil
		},
	}

	cmd.Flags().BoolVar(&pingLLM, "ping-llm", false, "Also send a health check to both model endpoints")
	return cmd
}

func resultKind(result preflight.Result) statusKind {
	switch {
	case result.Passed:
		return statusOK
	case result.Optional:
		return statusWarn
	default:
		return statusError
	}
}
