package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pixal/internal/archive"
	"pixal/internal/artifacts"
	"pixal/internal/config"
	"pixal/internal/editspec"
	"pixal/internal/fileutil"
	"pixal/internal/logging"
	"pixal/internal/services"
	"pixal/internal/services/ytdlp"
	"pixal/internal/stage"
	"pixal/internal/stageexec"
)

// Fetcher downloads a remote video to output.
type Fetcher interface {
	Download(ctx context.Context, url, output string) (ytdlp.Info, error)
}

// Ledger records run and step outcomes. The ledger store satisfies it.
type Ledger interface {
	stageexec.Recorder
	BeginRun(ctx context.Context, runID, command, source string) (int64, error)
	FinishRun(ctx context.Context, id int64, err error) error
}

// Source selects where RunAll gets its input video. With both fields empty
// the canonical input must already exist.
type Source struct {
	URL  string
	File string
}

func (s Source) String() string {
	switch {
	case s.URL != "":
		return s.URL
	case s.File != "":
		return s.File
	default:
		return "existing input"
	}
}

// Runner sequences stages over one workspace.
type Runner struct {
	cfg      *config.Config
	store    *artifacts.Store
	base     *slog.Logger
	logger   *slog.Logger
	stages   map[stage.ID]stage.Stage
	fetcher  Fetcher
	ledger   Ledger
	archiver *archive.Archiver
	now      func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLedger records runs and steps in l.
func WithLedger(l Ledger) Option {
	return func(r *Runner) { r.ledger = l }
}

// WithFetcher overrides the yt-dlp downloader.
func WithFetcher(f Fetcher) Option {
	return func(r *Runner) { r.fetcher = f }
}

// WithStages replaces the bindings for the given stage IDs.
func WithStages(stages ...stage.Stage) Option {
	return func(r *Runner) {
		for _, s := range stages {
			r.stages[s.ID()] = s
		}
	}
}

// WithCollaborators rebinds every stage with the given external services.
func WithCollaborators(c Collaborators) Option {
	return func(r *Runner) {
		for _, s := range DefaultStages(r.cfg, r.store, r.base, c) {
			r.stages[s.ID()] = s
		}
	}
}

// WithClock overrides the time source used for run ids and the run manifest.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New builds a runner with the default stage bindings.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	store := artifacts.NewStore(cfg)
	r := &Runner{
		cfg:      cfg,
		store:    store,
		base:     logger,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		stages:   make(map[stage.ID]stage.Stage),
		fetcher:  ytdlp.New(cfg.Runtime.YtDLPBin, 0),
		archiver: archive.NewArchiver(cfg, logger),
		now:      time.Now,
	}
	for _, s := range DefaultStages(cfg, store, logger, Collaborators{}) {
		r.stages[s.ID()] = s
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store exposes the artifact store the runner operates on.
func (r *Runner) Store() *artifacts.Store { return r.store }

// Health reports readiness of every stage in sequence order.
func (r *Runner) Health(ctx context.Context) []stage.Health {
	out := make([]stage.Health, 0, len(r.stages))
	for _, id := range stage.Sequence() {
		s, ok := r.stages[id]
		if !ok {
			out = append(out, stage.Unhealthy(id.String(), "no binding"))
			continue
		}
		if checker, ok := s.(stage.HealthChecker); ok {
			out = append(out, checker.HealthCheck(ctx))
			continue
		}
		out = append(out, stage.Healthy(id.String()))
	}
	return out
}

// RunAll acquires the input, runs every stage in order and archives the
// outputs. It returns the run id even on failure so callers can correlate
// logs. A failure anywhere skips archival.
func (r *Runner) RunAll(ctx context.Context, src Source) (string, error) {
	started := r.now()
	runID := archive.NewRunID(r.cfg, started)
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)

	runRef := r.beginRun(ctx, logger, runID, "run", src.String())
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("source", src.String()),
	)

	manifest, err := r.runAll(ctx, logger, runRef, runID, src, started)
	r.finishRun(ctx, logger, runRef, err)
	if err != nil {
		return runID, err
	}
	logger.Info("run complete",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("shorts", len(manifest.Shorts)),
		logging.String("run_root", r.archiver.RunRoot(runID)),
	)
	return runID, nil
}

func (r *Runner) runAll(ctx context.Context, logger *slog.Logger, runRef int64, runID string, src Source, started time.Time) (archive.Manifest, error) {
	if err := r.acquire(ctx, logger, src); err != nil {
		return archive.Manifest{}, err
	}

	var completed []string
	for _, id := range stage.Sequence() {
		if err := r.execute(ctx, runRef, id); err != nil {
			return archive.Manifest{}, err
		}
		completed = append(completed, id.String())
	}

	return r.archiver.Archive(ctx, archive.Record{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: r.now(),
		Source:     src.String(),
		Stages:     completed,
	})
}

// RunStage runs exactly one stage. Missing inputs fail with ErrMissingInput;
// upstream stages are never run implicitly.
func (r *Runner) RunStage(ctx context.Context, id stage.ID) error {
	if !id.Valid() {
		return services.Wrap(services.ErrUnknownStage, "", "run stage", fmt.Sprintf("stage %d", int(id)), nil)
	}
	runID := archive.NewRunID(r.cfg, r.now())
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)

	runRef := r.beginRun(ctx, logger, runID, "step", id.String())
	err := r.execute(ctx, runRef, id)
	r.finishRun(ctx, logger, runRef, err)
	return err
}

func (r *Runner) execute(ctx context.Context, runRef int64, id stage.ID) error {
	s, ok := r.stages[id]
	if !ok {
		return services.Wrap(services.ErrUnknownStage, id.String(), "run stage", "no binding registered", nil)
	}
	opts := stageexec.Options{
		Logger: r.logger,
		Store:  r.store,
		RunRef: runRef,
		Stage:  s,
	}
	if r.ledger != nil {
		opts.Recorder = r.ledger
	}
	return stageexec.Run(ctx, opts)
}

// acquire places the input video at its canonical path.
func (r *Runner) acquire(ctx context.Context, logger *slog.Logger, src Source) error {
	input := r.store.Path(artifacts.InputVideo)
	switch {
	case src.URL != "" && src.File != "":
		return services.Wrap(services.ErrConfiguration, "fetch", "acquire input", "use either a URL or a file, not both", nil)
	case src.URL != "":
		logger.Info("fetching video", logging.String("url", src.URL), logging.String("output", input))
		info, err := r.fetcher.Download(ctx, src.URL, input)
		if err != nil {
			return fmt.Errorf("fetch input: %w", err)
		}
		return r.seedStreamMeta(logger, info)
	case src.File != "":
		return r.copyInput(logger, src.File, input)
	default:
		if err := r.store.Require("fetch", artifacts.InputVideo); err != nil {
			return err
		}
		logger.Info("using existing input video", logging.String("path", input))
		return nil
	}
}

func (r *Runner) copyInput(logger *slog.Logger, file, input string) error {
	srcAbs, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("resolve input file: %w", err)
	}
	info, err := os.Stat(srcAbs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrMissingInput, "fetch", "copy input", srcAbs, nil)
		}
		return fmt.Errorf("stat input file: %w", err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrConfiguration, "fetch", "copy input", srcAbs+" is a directory", nil)
	}
	if dstAbs, err := filepath.Abs(input); err == nil && dstAbs == srcAbs {
		logger.Info("input file already in place", logging.String("path", input))
		return nil
	}
	if err := fileutil.CopyFile(srcAbs, input); err != nil {
		return fmt.Errorf("copy input file: %w", err)
	}
	logger.Info("input file copied", logging.String("source", srcAbs), logging.String("path", input))
	return nil
}

// seedStreamMeta replaces stream metadata with the downloaded video's title
// and tags. Without a title the existing metadata is left alone.
func (r *Runner) seedStreamMeta(logger *slog.Logger, info ytdlp.Info) error {
	title := strings.TrimSpace(info.Title)
	if title == "" {
		return nil
	}
	tags := info.Tags
	if tags == nil {
		tags = []string{}
	}
	meta := editspec.StreamMeta{StreamTitle: title, Tags: tags}
	if err := r.store.WriteJSON(artifacts.StreamMeta, meta); err != nil {
		return err
	}
	logger.Debug("stream metadata seeded from download", logging.String("title", title))
	return nil
}

func (r *Runner) beginRun(ctx context.Context, logger *slog.Logger, runID, command, source string) int64 {
	if r.ledger == nil {
		return 0
	}
	id, err := r.ledger.BeginRun(ctx, runID, command, source)
	if err != nil {
		logging.WarnWithContext(logger, "ledger run insert failed", "ledger_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run history incomplete"),
		)
		return 0
	}
	return id
}

func (r *Runner) finishRun(ctx context.Context, logger *slog.Logger, id int64, runErr error) {
	if r.ledger == nil || id == 0 {
		return
	}
	if err := r.ledger.FinishRun(context.WithoutCancel(ctx), id, runErr); err != nil {
		logging.WarnWithContext(logger, "ledger run update failed", "ledger_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run history incomplete"),
		)
	}
}
