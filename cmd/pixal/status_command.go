package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"pixal/internal/workspace"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show artifact presence, the latest archived run, and recent ledger entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			snapshot := workspace.Collect(cmd.Context(), cfg)
			if jsonOutput {
				return writeJSON(cmd, snapshot)
			}
			printSnapshot(cmd.OutOrStdout(), snapshot)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printSnapshot(out io.Writer, snapshot workspace.Snapshot) {
	colorize := shouldColorize(out)

	fmt.Fprintln(out, renderSectionHeader("Workspace", colorize))
	fmt.Fprintln(out, snapshot.Workspace)
	fmt.Fprintln(out)

	rows := make([][]string, 0, len(snapshot.Artifacts))
	for _, artifact := range snapshot.Artifacts {
		size := "-"
		if artifact.Exists {
			if artifact.IsDir {
				size = strconv.Itoa(artifact.Items) + " items"
			} else {
				size = formatBytes(artifact.Size)
			}
		}
		rows = append(rows, []string{
			artifact.Kind,
			artifact.Path,
			yesNo(artifact.Exists),
			size,
			formatTime(artifact.Modified),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Artifact", "Path", "Exists", "Size", "Modified"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
	fmt.Fprintln(out)

	fmt.Fprintln(out, renderSectionHeader("Latest run", colorize))
	if snapshot.LatestRun == nil {
		fmt.Fprintln(out, "No archived runs")
	} else {
		latest := snapshot.LatestRun
		fmt.Fprintf(out, "%s  %s\n", latest.RunID, latest.Path)
		if latest.Manifest != nil {
			fmt.Fprintf(out, "source: %s  shorts: %d  caption files: %d\n",
				latest.Manifest.Source, len(latest.Manifest.Shorts), len(latest.Manifest.CapsynthFiles))
		}
	}

	if len(snapshot.Ledger) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderSectionHeader("Recent invocations", colorize))
		ledgerRows := make([][]string, 0, len(snapshot.Ledger))
		for _, run := range snapshot.Ledger {
			started := run.StartedAt
			ledgerRows = append(ledgerRows, []string{
				run.RunID,
				run.Command,
				run.Status,
				strconv.Itoa(len(run.Steps)),
				formatTime(&started),
				run.ErrorMessage,
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Run", "Command", "Status", "Steps", "Started", "Error"},
			ledgerRows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
		))
	}

	for _, warning := range snapshot.Warnings {
		fmt.Fprintln(out, renderStatusLine("Warning", statusWarn, warning, colorize))
	}
}
