package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixal/internal/stage"
)

func newStepCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "step <stage>",
		Short:     "Run exactly one named stage",
		Long:      "Run one stage against the artifacts already in the workspace. Nothing is archived.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: stage.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := stage.ParseID(args[0])
			if err != nil {
				return err
			}

			s, err := ctx.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.runner(ctx.pipelineOptions...).RunStage(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStatusLine("Step", statusOK, id.String(), shouldColorize(cmd.OutOrStdout())))
			return nil
		},
	}
}
