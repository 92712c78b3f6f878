package stageexec

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pixal/internal/artifacts"
	"pixal/internal/logging"
	"pixal/internal/services"
	"pixal/internal/stage"
)

// Recorder persists step outcomes. The ledger store satisfies it.
type Recorder interface {
	BeginStep(ctx context.Context, runRef int64, stage string) (int64, error)
	FinishStep(ctx context.Context, id int64, err error) error
}

// Options controls one stage execution.
type Options struct {
	Logger   *slog.Logger
	Store    *artifacts.Store
	Recorder Recorder
	RunRef   int64
	Stage    stage.Stage
}

// Run checks the stage inputs, executes it and records the outcome. Missing
// inputs fail with ErrMissingInput before the stage body runs.
func Run(ctx context.Context, opts Options) error {
	if opts.Stage == nil {
		return fmt.Errorf("stage binding unavailable")
	}
	if opts.Store == nil {
		return fmt.Errorf("artifact store is required")
	}

	name := opts.Stage.ID().String()
	stageCtx := services.WithStage(ctx, name)
	logger := logging.WithContext(stageCtx, opts.Logger)

	stepID := beginStep(stageCtx, logger, opts, name)

	logger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("label", Label(opts.Stage.ID())),
		logging.String("consumes", kindList(opts.Stage.Consumes())),
	)
	started := time.Now()

	err := checkInputs(opts.Store, name, opts.Stage.Consumes())
	if err == nil {
		err = opts.Stage.Run(stageCtx)
	}
	finishStep(stageCtx, logger, opts, stepID, err)

	if err != nil {
		logging.ErrorWithContext(logger, "stage failed", "stage_failure",
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.String(logging.FieldErrorHint, hintFor(err, name)),
			logging.Duration("elapsed", time.Since(started)),
			logging.Error(err),
		)
		return err
	}

	logger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("produces", kindList(opts.Stage.Produces())),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func checkInputs(store *artifacts.Store, name string, kinds []artifacts.Kind) error {
	for _, kind := range kinds {
		if err := store.Require(name, kind); err != nil {
			return err
		}
	}
	return nil
}

func beginStep(ctx context.Context, logger *slog.Logger, opts Options, name string) int64 {
	if opts.Recorder == nil || opts.RunRef == 0 {
		return 0
	}
	id, err := opts.Recorder.BeginStep(ctx, opts.RunRef, name)
	if err != nil {
		logging.WarnWithContext(logger, "ledger step insert failed", "ledger_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "stage history incomplete"),
		)
		return 0
	}
	return id
}

func finishStep(ctx context.Context, logger *slog.Logger, opts Options, id int64, stepErr error) {
	if opts.Recorder == nil || id == 0 {
		return
	}
	if err := opts.Recorder.FinishStep(context.WithoutCancel(ctx), id, stepErr); err != nil {
		logging.WarnWithContext(logger, "ledger step update failed", "ledger_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "stage history incomplete"),
		)
	}
}

// Label returns a display label such as "Captionpack".
func Label(id stage.ID) string {
	return cases.Title(language.English).String(strings.ReplaceAll(id.String(), "_", " "))
}

func kindList(kinds []artifacts.Kind) string {
	parts := make([]string, len(kinds))
	for i, kind := range kinds {
		parts[i] = kind.String()
	}
	return strings.Join(parts, ",")
}

func hintFor(err error, name string) string {
	switch services.Kind(err) {
	case "missing_input":
		return "run the upstream stage first or use 'pixal run'"
	case "malformed_artifact", "schema_error":
		return "fix or regenerate the input artifact, then rerun 'pixal step " + name + "'"
	case "external_tool_failure", "timeout":
		return "check the external tool output in the log and rerun 'pixal doctor'"
	default:
		return "check logs for details"
	}
}
