package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pixal/internal/artifacts"
	"pixal/internal/config"
	"pixal/internal/editspec"
	"pixal/internal/logging"
)

// Options carries encoder settings and caption styling.
type Options struct {
	FFmpegBin           string
	InputPath           string
	Width               int
	Height              int
	FrameRate           int
	FontSize            int
	BorderWidth         int
	EmphasisStyle       string
	EmphasisFontSize    int
	EmphasisBorderWidth int
	CaptionSeconds      float64
	AudioFilter         string
	Timeout             time.Duration
}

// OptionsFromConfig reads render and runtime settings.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		FFmpegBin:           cfg.Runtime.FFmpegBin,
		InputPath:           cfg.Paths.InputVideo,
		Width:               cfg.Render.Width,
		Height:              cfg.Render.Height,
		FrameRate:           cfg.Render.FrameRate,
		FontSize:            cfg.Render.FontSize,
		BorderWidth:         cfg.Render.BorderWidth,
		EmphasisStyle:       cfg.Render.EmphasisStyle,
		EmphasisFontSize:    cfg.Render.EmphasisFontSize,
		EmphasisBorderWidth: cfg.Render.EmphasisBorderWidth,
		CaptionSeconds:      cfg.Render.CaptionSeconds,
		AudioFilter:         cfg.Render.AudioFilter,
		Timeout:             time.Duration(cfg.Runtime.EncoderTimeoutSeconds) * time.Second,
	}
}

// Rendered describes one encoded output file.
type Rendered struct {
	ClipID   string
	Path     string
	Duration float64
}

// Engine renders clips sequentially.
type Engine struct {
	store  *artifacts.Store
	opts   Options
	runner Runner
	logger *slog.Logger
}

// NewEngine builds an engine. A nil runner uses ExecRunner.
func NewEngine(cfg *config.Config, store *artifacts.Store, runner Runner, logger *slog.Logger) *Engine {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Engine{
		store:  store,
		opts:   OptionsFromConfig(cfg),
		runner: runner,
		logger: logging.NewComponentLogger(logger, "render"),
	}
}

// RenderAll renders every clip in order. Stale shorts whose clip id is not in
// the spec are removed first. The first failure aborts the remaining clips.
func (e *Engine) RenderAll(ctx context.Context, clips []editspec.Clip) ([]Rendered, error) {
	if err := editspec.AssignIDs(clips); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(e.store.Path(artifacts.Shorts), 0o755); err != nil {
		return nil, fmt.Errorf("create shorts dir: %w", err)
	}
	if err := e.removeStale(clips); err != nil {
		return nil, err
	}

	rendered := make([]Rendered, 0, len(clips))
	for i, clip := range clips {
		out, err := e.RenderOne(ctx, clip, i+1)
		if err != nil {
			return rendered, err
		}
		rendered = append(rendered, out)
	}
	return rendered, nil
}

// RenderOne encodes a single clip to outputs/shorts/<clip_id>.mp4.
func (e *Engine) RenderOne(ctx context.Context, clip editspec.Clip, ordinal int) (Rendered, error) {
	if clip.ID == "" {
		clip.ID = editspec.ClipID(ordinal)
	}
	logger := logging.WithContext(ctx, e.logger).With(
		logging.String("clip_id", clip.ID),
		logging.Int("ordinal", ordinal),
	)
	output := e.store.ShortPath(clip.ID)
	args := Args(clip, e.opts, output)

	runCtx := ctx
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	logger.Info("rendering clip",
		logging.String("output", output),
		logging.Float64("duration_seconds", clip.Duration()),
		logging.Int("captions", len(clip.Captions)),
	)
	logger.Debug("encoder command", logging.String("command", e.opts.FFmpegBin+" "+strings.Join(args, " ")))

	started := time.Now()
	if err := e.runner.Run(runCtx, e.opts.FFmpegBin, args); err != nil {
		if removeErr := os.Remove(output); removeErr != nil && !os.IsNotExist(removeErr) {
			logging.WarnWithContext(logger, "failed to remove partial output", "render_cleanup",
				logging.String("output", output),
				logging.Error(removeErr),
				logging.String(logging.FieldImpact, "a partial file may be picked up by validation"),
				logging.String(logging.FieldErrorHint, "delete the file or run pixal clean outputs"),
			)
		}
		return Rendered{}, fmt.Errorf("render %s (clip %d): %w", clip.ID, ordinal, err)
	}
	logger.Info("clip rendered", logging.Duration("elapsed", time.Since(started)))
	return Rendered{ClipID: clip.ID, Path: output, Duration: clip.Duration()}, nil
}

func (e *Engine) removeStale(clips []editspec.Clip) error {
	keep := make(map[string]struct{}, len(clips))
	for _, clip := range clips {
		keep[filepath.Base(e.store.ShortPath(clip.ID))] = struct{}{}
	}
	existing, err := e.store.ListShorts()
	if err != nil {
		return err
	}
	for _, path := range existing {
		if _, ok := keep[filepath.Base(path)]; ok {
			continue
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove stale short %s: %w", path, err)
		}
		e.logger.Debug("removed stale short", logging.String("path", path))
	}
	return nil
}
