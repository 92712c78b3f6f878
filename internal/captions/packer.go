// Package captions implements the caption pack stage: one SRT subtitle file
// and one JSON manifest per clip plus the ordered CLIPS_INDEX.json.
package captions

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"pixal/internal/artifacts"
	"pixal/internal/config"
	"pixal/internal/editspec"
	"pixal/internal/fileutil"
	"pixal/internal/logging"
)

// Result lists the files written by a pack.
type Result struct {
	Subtitles []string
	Manifests []string
	Index     []editspec.IndexEntry
}

// Packer writes the caption export for an augmented edit spec.
type Packer struct {
	store      *artifacts.Store
	cueSeconds float64
	logger     *slog.Logger
}

// NewPacker builds a packer using the configured caption duration.
func NewPacker(cfg *config.Config, store *artifacts.Store, logger *slog.Logger) *Packer {
	return &Packer{
		store:      store,
		cueSeconds: cfg.Render.CaptionSeconds,
		logger:     logging.NewComponentLogger(logger, "captions"),
	}
}

// Pack rewrites the caption export directory for clips. Every clip gets a
// subtitle file, even when it has no captions, and a manifest. The index is
// written last, once every clip has been processed.
func (p *Packer) Pack(ctx context.Context, clips []editspec.Clip) (Result, error) {
	logger := logging.WithContext(ctx, p.logger)
	if err := editspec.AssignIDs(clips); err != nil {
		return Result{}, err
	}

	subDir := filepath.Dir(p.store.SubtitlePath("x"))
	manifestDir := filepath.Dir(p.store.ManifestPath("x"))
	for _, dir := range []string{subDir, manifestDir} {
		if err := os.RemoveAll(dir); err != nil {
			return Result{}, fmt.Errorf("reset %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{}, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	result := Result{Index: make([]editspec.IndexEntry, 0, len(clips))}
	for _, clip := range clips {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		srtPath := p.store.SubtitlePath(clip.ID)
		manifestPath := p.store.ManifestPath(clip.ID)

		srt := FormatSRT(clip.Cues(), clip.Start, p.cueSeconds)
		if err := fileutil.WriteFileAtomic(srtPath, []byte(srt), 0o644); err != nil {
			return result, fmt.Errorf("write subtitles for %s: %w", clip.ID, err)
		}
		if err := fileutil.WriteJSONAtomic(manifestPath, editspec.ManifestFor(clip)); err != nil {
			return result, fmt.Errorf("write manifest for %s: %w", clip.ID, err)
		}
		if len(clip.Captions) == 0 {
			logger.Debug("clip has no captions; wrote empty subtitle file", logging.String("clip_id", clip.ID))
		}

		result.Subtitles = append(result.Subtitles, srtPath)
		result.Manifests = append(result.Manifests, manifestPath)
		result.Index = append(result.Index, indexEntry(clip, p.store.Rel(srtPath), p.store.Rel(manifestPath)))
	}

	if err := p.store.WriteClipIndex(result.Index); err != nil {
		return result, err
	}
	logger.Info("caption export written",
		logging.Int("clips", len(result.Index)),
		logging.String("index", p.store.Path(artifacts.ClipIndex)),
	)
	return result, nil
}

func indexEntry(clip editspec.Clip, srt, manifest string) editspec.IndexEntry {
	entry := editspec.IndexEntry{
		ClipID:   clip.ID,
		Start:    clip.Start,
		End:      clip.End,
		Title:    clip.Title,
		SRT:      srt,
		Manifest: manifest,
	}
	if style := clip.CaptionStyle(); style != "" {
		entry.CaptionStyle = editspec.StringPtr(style)
	}
	return entry
}
