package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pixal/internal/workspace"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "clean <" + strings.Join(workspace.Targets(), "|") + ">",
		Short:     "Delete generated outputs and/or metadata artifacts",
		Args:      cobra.ExactArgs(1),
		ValidArgs: workspace.Targets(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			lock, err := workspace.AcquireLock(cfg)
			if err != nil {
				return err
			}
			defer lock.Release() //nolint:errcheck

			removed, err := workspace.Clean(cfg, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(removed) == 0 {
				fmt.Fprintln(out, "Nothing to clean")
				return nil
			}
			for _, path := range removed {
				fmt.Fprintf(out, "removed %s\n", path)
			}
			return nil
		},
	}
}
