package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pixal/internal/pipeline"
	"pixal/internal/services"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var vodURL string
	var file string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full stage sequence and archive the outputs",
		Long: `Run acquires the input video from --vod, --file, or the canonical input
already in the workspace, then runs transcribe, detect, craft, augment,
timeline, render and captionpack in order.

Outputs are archived under the runs directory only when every stage succeeds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := pipeline.Source{URL: strings.TrimSpace(vodURL), File: strings.TrimSpace(file)}
			if src.URL != "" && src.File != "" {
				return services.Wrap(services.ErrConfiguration, "", "run", "--vod and --file are mutually exclusive", nil)
			}

			s, err := ctx.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			runner := s.runner(ctx.pipelineOptions...)
			runID, err := runner.RunAll(cmd.Context(), src)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderStatusLine("Run", statusOK, runID, colorize))
			fmt.Fprintln(out, renderStatusLine("Shorts", statusInfo, s.cfg.ShortsDir(), colorize))
			fmt.Fprintln(out, renderStatusLine("Archive", statusInfo, archiveRoot(s.cfg.Outputs.RunsDir, runID), colorize))
			return nil
		},
	}

	cmd.Flags().StringVar(&vodURL, "vod", "", "Download the input video from this URL with yt-dlp")
	cmd.Flags().StringVar(&file, "file", "", "Copy this local video into the workspace as the input")
	cmd.MarkFlagsMutuallyExclusive("vod", "file")
	return cmd
}
