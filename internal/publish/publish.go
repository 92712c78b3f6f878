// Package publish is the post gate. It always runs validation first, refuses
// an invalid report, and derives the upload metadata for a dry-run preview.
// Live upload is not implemented.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"pixal/internal/artifacts"
	"pixal/internal/config"
	"pixal/internal/editspec"
	"pixal/internal/logging"
	"pixal/internal/services"
	"pixal/internal/textutil"
	"pixal/internal/validation"
)

// PlatformYouTube is the only supported target.
const PlatformYouTube = "youtube"

const (
	maxTitleRunes      = 100
	defaultDescription = "Pixal Short"
	bytesPerMB         = 1024 * 1024
)

// Visibilities lists accepted visibility values.
var Visibilities = []string{"public", "unlisted", "private"}

// Request describes one post invocation.
type Request struct {
	Platform   string
	DryRun     bool
	Limit      int
	Visibility string
}

// Upload is the metadata that would be sent for one clip.
type Upload struct {
	Index       int      `json:"index"`
	ClipID      string   `json:"clip_id"`
	File        string   `json:"file"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Visibility  string   `json:"visibility"`
	SizeMB      float64  `json:"file_size_mb"`
}

// Plan is the upload preview.
type Plan struct {
	Platform string   `json:"platform"`
	DryRun   bool     `json:"dry_run"`
	Limit    int      `json:"limit,omitempty"`
	Uploads  []Upload `json:"uploads"`
	Warnings []string `json:"warnings"`
}

// Publisher validates shorts and prepares uploads.
type Publisher struct {
	cfg    *config.Config
	store  *artifacts.Store
	gate   *validation.Gate
	logger *slog.Logger
}

// New builds a publisher around an existing validation gate.
func New(cfg *config.Config, store *artifacts.Store, gate *validation.Gate, logger *slog.Logger) *Publisher {
	return &Publisher{
		cfg:    cfg,
		store:  store,
		gate:   gate,
		logger: logging.NewComponentLogger(logger, "publish"),
	}
}

// Post validates, then builds the upload plan. The report is returned
// whenever validation ran so callers can print it. An invalid report yields
// ErrValidationFailed; a request without DryRun yields ErrNotImplemented
// after the plan is built.
func (p *Publisher) Post(ctx context.Context, req Request) (*validation.Report, Plan, error) {
	platform, visibility, err := p.normalize(req)
	if err != nil {
		return nil, Plan{}, err
	}

	report, err := p.gate.ValidateAll(ctx)
	if err != nil {
		return nil, Plan{}, err
	}
	if err := report.Err(); err != nil {
		return &report, Plan{}, err
	}

	plan, err := p.BuildPlan(platform, visibility, req.Limit)
	if err != nil {
		return &report, Plan{}, err
	}
	plan.DryRun = req.DryRun
	if !req.DryRun {
		return &report, plan, services.Wrap(services.ErrNotImplemented, "", "post "+platform,
			"live posting is not implemented; use --dry-run to preview", nil)
	}
	logging.WithContext(ctx, p.logger).Info("upload preview prepared",
		logging.String("platform", platform),
		logging.Int("clips", len(plan.Uploads)),
	)
	return &report, plan, nil
}

func (p *Publisher) normalize(req Request) (string, string, error) {
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if platform != PlatformYouTube {
		return "", "", services.Wrap(services.ErrUnknownTarget, "", "post",
			fmt.Sprintf("unsupported platform %q; only %q is supported", req.Platform, PlatformYouTube), nil)
	}
	visibility := strings.ToLower(strings.TrimSpace(req.Visibility))
	if visibility == "" {
		visibility = p.cfg.Publish.DefaultVisibility
	}
	if !slices.Contains(Visibilities, visibility) {
		return "", "", services.Wrap(services.ErrConfiguration, "", "post",
			fmt.Sprintf("visibility %q must be one of %s", visibility, strings.Join(Visibilities, ", ")), nil)
	}
	if req.Limit < 0 {
		return "", "", services.Wrap(services.ErrConfiguration, "", "post", "limit must not be negative", nil)
	}
	return platform, visibility, nil
}

// BuildPlan derives upload metadata for each rendered short in filename
// order, joined to the clip index by clip id. A limit of zero means all.
func (p *Publisher) BuildPlan(platform, visibility string, limit int) (Plan, error) {
	plan := Plan{Platform: platform, Limit: limit, Uploads: []Upload{}, Warnings: []string{}}

	index := map[string]editspec.IndexEntry{}
	entries, err := p.store.ReadClipIndex()
	switch {
	case err == nil:
		for _, e := range entries {
			index[e.ClipID] = e
		}
	case errors.Is(err, services.ErrMissingInput):
		plan.Warnings = append(plan.Warnings, artifacts.ClipIndexName+" not found; metadata will be incomplete")
	default:
		plan.Warnings = append(plan.Warnings, artifacts.ClipIndexName+" unreadable: "+err.Error())
	}

	files, err := p.store.ListShorts()
	if err != nil {
		return plan, err
	}
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	for i, file := range files {
		stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		var entry *editspec.IndexEntry
		if e, ok := index[stem]; ok {
			entry = &e
		}
		upload := Derive(entry, stem, p.cfg.Publish.Tags)
		upload.Index = i + 1
		upload.File = p.store.Rel(file)
		upload.Visibility = visibility
		if info, err := os.Stat(file); err == nil {
			upload.SizeMB = float64(info.Size()) / bytesPerMB
		}
		plan.Uploads = append(plan.Uploads, upload)
	}
	return plan, nil
}

// Derive builds title, description and tags for one clip. entry may be nil
// when the clip is missing from the index.
func Derive(entry *editspec.IndexEntry, stem string, tags []string) Upload {
	upload := Upload{ClipID: stem, Tags: slices.Clone(tags)}
	if upload.Tags == nil {
		upload.Tags = []string{}
	}

	title := ""
	if entry != nil && entry.Title != nil {
		title = strings.TrimSpace(*entry.Title)
	}
	var description []string
	if title != "" {
		description = append(description, title)
	} else {
		title = "Short: " + stem
	}
	upload.Title = textutil.Truncate(title, maxTitleRunes)

	if entry != nil {
		description = append(description, fmt.Sprintf("Duration: %.1fs", entry.End-entry.Start))
	}
	upload.Description = defaultDescription
	if len(description) > 0 {
		upload.Description = strings.Join(description, "\n")
	}
	return upload
}
