package validation

import (
	"context"
	"errors"
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
	"pixal/internal/media/ffprobe"
	"pixal/internal/services"
)

// Prober reports duration and geometry for a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (ffprobe.Info, error)
}

const bytesPerMB = 1024 * 1024

// Gate validates rendered shorts against Rules.
type Gate struct {
	store  *artifacts.Store
	rules  Rules
	prober Prober
	logger *slog.Logger
}

// NewGate builds a gate. A nil prober runs the configured ffprobe binary.
func NewGate(cfg *config.Config, store *artifacts.Store, prober Prober, logger *slog.Logger) *Gate {
	if prober == nil {
		prober = ffprobe.Prober{
			Binary:  cfg.Runtime.FFprobeBin,
			Timeout: probeTimeout(cfg),
		}
	}
	return &Gate{
		store:  store,
		rules:  RulesFromConfig(cfg),
		prober: prober,
		logger: logging.NewComponentLogger(logger, "validation"),
	}
}

// ValidateAll validates every short, persists the report and returns it.
// Errors are returned only when the shorts directory cannot be listed or the
// report cannot be written; an invalid report is a normal result.
func (g *Gate) ValidateAll(ctx context.Context) (Report, error) {
	logger := logging.WithContext(ctx, g.logger)

	files, err := g.store.ListShorts()
	if err != nil {
		return Report{}, err
	}

	var report Report
	if len(files) == 0 {
		report = emptyReport()
	} else {
		index, globalWarnings := g.loadIndex(logger)
		clips := make([]ClipValidation, 0, len(files))
		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return Report{}, err
			}
			clips = append(clips, g.validateClip(ctx, logger, path, index))
		}
		report = aggregate(clips, globalWarnings)
	}

	if err := g.store.WriteJSON(artifacts.ValidationReport, report); err != nil {
		return report, err
	}
	logger.Info("validation report written",
		logging.Bool("valid", report.Valid),
		logging.Int("clips_total", report.ClipsTotal),
		logging.Int("clips_invalid", report.ClipsInvalid),
		logging.String("path", g.store.Path(artifacts.ValidationReport)),
	)
	return report, nil
}

// loadIndex maps clip ids to index rows. A missing index yields an empty map;
// an unreadable one also adds a global warning.
func (g *Gate) loadIndex(logger *slog.Logger) (map[string]editspec.IndexEntry, []string) {
	entries, err := g.store.ReadClipIndex()
	if err != nil {
		if errors.Is(err, services.ErrMissingInput) {
			logger.Debug("clip index not found; metadata checks degrade to warnings")
			return map[string]editspec.IndexEntry{}, nil
		}
		logging.WarnWithContext(logger, "clip index unreadable", "validation_index_unreadable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "titles unavailable; clips get missing-title warnings"),
			logging.String(logging.FieldErrorHint, "rerun pixal step captionpack"),
		)
		return map[string]editspec.IndexEntry{}, []string{"Clip index unreadable: metadata unavailable"}
	}
	index := make(map[string]editspec.IndexEntry, len(entries))
	for _, entry := range entries {
		index[entry.ClipID] = entry
	}
	return index, nil
}

func (g *Gate) validateClip(ctx context.Context, logger *slog.Logger, path string, index map[string]editspec.IndexEntry) ClipValidation {
	clipID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	result := ClipValidation{
		ClipPath: g.store.Rel(path),
		ClipID:   clipID,
		Errors:   []string{},
		Warnings: []string{},
	}

	var sizeMB float64
	if info, err := os.Stat(path); err == nil {
		sizeMB = float64(info.Size()) / bytesPerMB
	}
	result.FileSizeMB = round(sizeMB, 2)

	entry, joined := index[clipID]
	if joined {
		result.Title = entry.Title
	}

	probe, err := g.prober.Probe(ctx, path)
	if err != nil {
		logging.WarnWithContext(logger, "probe failed", "validation_probe_failed",
			logging.String("clip_id", clipID),
			logging.Error(err),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.String(logging.FieldImpact, "clip marked invalid"),
			logging.String(logging.FieldErrorHint, "inspect the file with ffprobe"),
		)
		result.Errors = append(result.Errors, "Failed to probe video with ffprobe")
		return result
	}

	m := Measurement{
		Duration: probe.Duration,
		Width:    probe.Width,
		Height:   probe.Height,
		SizeMB:   sizeMB,
		Title:    result.Title,
	}
	if joined && entry.Manifest != "" {
		if manifest, err := g.store.ReadManifest(clipID); err == nil {
			m.CaptionText = joinCues(manifest.Captions)
		}
	}

	result.Errors, result.Warnings = g.rules.Check(m)
	result.Valid = len(result.Errors) == 0

	duration := round(probe.Duration, 2)
	width, height := probe.Width, probe.Height
	result.Duration = &duration
	result.Width = &width
	result.Height = &height
	if ratio := m.AspectRatio(); ratio > 0 {
		rounded := round(ratio, 4)
		result.AspectRatio = &rounded
	}

	logger.Debug("clip validated",
		logging.String("clip_id", clipID),
		logging.Bool("valid", result.Valid),
		logging.Int("errors", len(result.Errors)),
		logging.Int("warnings", len(result.Warnings)),
	)
	return result
}

func joinCues(cues []editspec.TimedCue) string {
	parts := make([]string, 0, len(cues))
	for _, cue := range cues {
		if text := strings.TrimSpace(cue.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// Err returns ErrValidationFailed when the report is invalid.
func (r Report) Err() error {
	if r.Valid {
		return nil
	}
	return services.Wrap(services.ErrValidationFailed, "validate", "",
		fmt.Sprintf("%d of %d clips invalid, %d errors", r.ClipsInvalid, r.ClipsTotal, len(r.Errors)), nil)
}

func probeTimeout(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Runtime.ProbeTimeoutSeconds) * time.Second
}
