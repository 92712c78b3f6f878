// Package toolexec runs external command-line tools (ffmpeg, yt-dlp,
// whisper.cpp) and maps their failures onto the services error taxonomy.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"pixal/internal/services"
)

// Runner executes an external command to completion.
type Runner interface {
	Run(ctx context.Context, binary string, args []string) error
}

const stderrTail = 2048

// Exec runs commands with os/exec and keeps the tail of stderr for error
// messages. Stage labels the wrapped errors. Stdout, when set, receives the
// command's standard output.
type Exec struct {
	Stage  string
	Stdout io.Writer
}

// Run executes binary with args. A non-zero exit or a missing binary is an
// external tool failure; a context deadline is a timeout.
func (e Exec) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if e.Stdout != nil {
		cmd.Stdout = e.Stdout
	}
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, e.Stage, binary, "deadline exceeded", ctx.Err())
		}
		detail := Tail(strings.TrimSpace(stderr.String()), stderrTail)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return services.Wrap(services.ErrExternalTool, e.Stage, binary,
				fmt.Sprintf("exited with code %d: %s", exitErr.ExitCode(), detail), err)
		}
		return services.Wrap(services.ErrExternalTool, e.Stage, binary, "could not start", err)
	}
	return nil
}

// Tail returns the last n bytes of s, prefixed with "..." when truncated.
func Tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
