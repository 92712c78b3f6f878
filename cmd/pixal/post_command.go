package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pixal/internal/artifacts"
	"pixal/internal/publish"
	"pixal/internal/services"
	"pixal/internal/textutil"
	"pixal/internal/validation"
)

func newPostCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var limit int
	var visibility string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "post <platform>",
		Short: "Validate the rendered shorts and preview their uploads",
		Long: `Post runs validation first and refuses to continue when any clip is invalid.
With --dry-run it prints the upload metadata each short would carry.
Live uploads are not implemented.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{publish.PlatformYouTube},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			store := artifacts.NewStore(cfg)
			publisher := publish.New(cfg, store, validation.NewGate(cfg, store, nil, logger), logger)
			report, plan, err := publisher.Post(cmd.Context(), publish.Request{
				Platform:   args[0],
				DryRun:     dryRun,
				Limit:      limit,
				Visibility: visibility,
			})

			out := cmd.OutOrStdout()
			if errors.Is(err, services.ErrValidationFailed) && report != nil {
				if jsonOutput {
					_ = writeJSON(cmd, report)
				} else {
					_ = validation.WriteSummary(out, *report)
				}
				return err
			}
			if err != nil && !errors.Is(err, services.ErrNotImplemented) {
				return err
			}

			if jsonOutput {
				if writeErr := writeJSON(cmd, plan); writeErr != nil {
					return writeErr
				}
			} else {
				printPlan(out, plan)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview the uploads without contacting the platform")
	cmd.Flags().IntVar(&limit, "limit", 0, "Only include the first N shorts (0 means all)")
	cmd.Flags().StringVar(&visibility, "visibility", "", "Upload visibility: "+strings.Join(publish.Visibilities, ", "))
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the plan as JSON")
	return cmd
}

func printPlan(out io.Writer, plan publish.Plan) {
	colorize := shouldColorize(out)
	mode := "live"
	if plan.DryRun {
		mode = "dry run"
	}
	fmt.Fprintln(out, renderSectionHeader(fmt.Sprintf("%s upload preview (%s)", plan.Platform, mode), colorize))

	rows := make([][]string, 0, len(plan.Uploads))
	for _, upload := range plan.Uploads {
		rows = append(rows, []string{
			strconv.Itoa(upload.Index),
			upload.ClipID,
			textutil.Truncate(upload.Title, 48),
			upload.Visibility,
			fmt.Sprintf("%.2f", upload.SizeMB),
			strings.Join(upload.Tags, ", "),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Clip", "Title", "Visibility", "Size (MB)", "Tags"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
	))
	for _, warning := range plan.Warnings {
		fmt.Fprintln(out, renderStatusLine("Warning", statusWarn, warning, colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Uploads", statusInfo, strconv.Itoa(len(plan.Uploads)), colorize))
}
