package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"pixal/internal/artifacts"
	"pixal/internal/config"
	"pixal/internal/fileutil"
	"pixal/internal/logging"
)

// ManifestName is the run description written inside each snapshot.
const ManifestName = "run.json"

// Record describes a finished pipeline run.
type Record struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Source     string
	Stages     []string
}

// Manifest is the persisted run.json document.
type Manifest struct {
	RunID         string    `json:"run_id"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Source        string    `json:"source"`
	Stages        []string  `json:"stages"`
	Shorts        []string  `json:"shorts"`
	CapsynthFiles []string  `json:"capsynth_files"`
}

// Archiver copies shorts and caption exports into the run archive.
type Archiver struct {
	runsDir     string
	shortsDir   string
	capsynthDir string
	logger      *slog.Logger
}

// NewArchiver builds an archiver from configuration.
func NewArchiver(cfg *config.Config, logger *slog.Logger) *Archiver {
	return &Archiver{
		runsDir:     cfg.Outputs.RunsDir,
		shortsDir:   cfg.ShortsDir(),
		capsynthDir: cfg.CapsynthDir(),
		logger:      logging.NewComponentLogger(logger, "archive"),
	}
}

// RunRoot returns the snapshot directory for runID.
func (a *Archiver) RunRoot(runID string) string {
	return filepath.Join(a.runsDir, runID)
}

// Archive copies *.mp4 from the shorts directory and the whole caption export
// tree into runs/<run_id>/, then writes run.json. Missing source directories
// archive as empty.
func (a *Archiver) Archive(ctx context.Context, rec Record) (Manifest, error) {
	if strings.TrimSpace(rec.RunID) == "" {
		return Manifest{}, errors.New("archive: run id is required")
	}
	if rec.RunID != filepath.Base(rec.RunID) || rec.RunID == "." || rec.RunID == ".." {
		return Manifest{}, fmt.Errorf("archive: invalid run id %q", rec.RunID)
	}
	logger := logging.WithContext(ctx, a.logger)
	root := a.RunRoot(rec.RunID)

	// A repeated run id replaces the earlier snapshot so run.json lists
	// exactly what the directory holds.
	if _, err := os.Stat(root); err == nil {
		logger.Info("replacing existing run snapshot", logging.String("run_id", rec.RunID), logging.String("path", root))
		if err := os.RemoveAll(root); err != nil {
			return Manifest{}, fmt.Errorf("clear run root: %w", err)
		}
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return Manifest{}, fmt.Errorf("create run root: %w", err)
	}

	shorts, err := fileutil.CopyTree(a.shortsDir, filepath.Join(root, "shorts"), func(rel string) bool {
		return !strings.Contains(rel, string(filepath.Separator)) &&
			strings.EqualFold(filepath.Ext(rel), artifacts.ShortExt)
	})
	if err != nil {
		return Manifest{}, fmt.Errorf("archive shorts: %w", err)
	}
	capsynth, err := fileutil.CopyTree(a.capsynthDir, filepath.Join(root, "capsynth"), nil)
	if err != nil {
		return Manifest{}, fmt.Errorf("archive capsynth: %w", err)
	}

	manifest := Manifest{
		RunID:         rec.RunID,
		StartedAt:     rec.StartedAt.UTC(),
		FinishedAt:    rec.FinishedAt.UTC(),
		Source:        rec.Source,
		Stages:        nonNil(rec.Stages),
		Shorts:        sorted(shorts),
		CapsynthFiles: sorted(capsynth),
	}
	if err := fileutil.WriteJSONAtomic(filepath.Join(root, ManifestName), manifest); err != nil {
		return Manifest{}, fmt.Errorf("write run manifest: %w", err)
	}

	logger.Info("run archived",
		logging.String("run_root", root),
		logging.Int("shorts", len(manifest.Shorts)),
		logging.Int("capsynth_files", len(manifest.CapsynthFiles)),
	)
	return manifest, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func sorted(values []string) []string {
	out := nonNil(values)
	sort.Strings(out)
	return out
}
