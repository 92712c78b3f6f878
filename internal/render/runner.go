package render

import (
	"context"

	"pixal/internal/services/toolexec"
)

// Runner executes an external command to completion.
type Runner = toolexec.Runner

// ExecRunner runs the encoder with os/exec. A non-zero exit or a missing
// binary is an external tool failure; a context deadline is a timeout.
type ExecRunner struct{}

// Run executes binary with args.
func (ExecRunner) Run(ctx context.Context, binary string, args []string) error {
	return toolexec.Exec{Stage: "render"}.Run(ctx, binary, args)
}
