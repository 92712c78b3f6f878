package timeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"path/filepath"
	"strings"

	"pixal/internal/artifacts"
	"pixal/internal/config"
	"pixal/internal/editspec"
	"pixal/internal/logging"
	"pixal/internal/services"
)

const (
	formatID     = "r1"
	sourceID     = "r2"
	titleID      = "r3"
	titleUID     = ".../Titles.localized/Bumper:Opener.localized/Basic Title.localized/Basic Title.moti"
	eventName    = "Pixal"
	titleLane    = 2
	overlayLane  = 1
	sfxLane      = -1
	templatesDir = "assets/templates"
)

// Options controls placeholder durations and sequence geometry.
type Options struct {
	ProjectName  string
	Spacing      float64
	IntroSeconds float64
	OutroSeconds float64
	TitleSeconds float64
	SFXSeconds   float64
	Width        int
	Height       int
	FrameRate    int
	SourcePath   string
	Workspace    string
}

// OptionsFromConfig reads timeline and render settings.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ProjectName:  cfg.Timeline.ProjectName,
		Spacing:      cfg.Timeline.ClipSpacingSeconds,
		IntroSeconds: cfg.Timeline.IntroSeconds,
		OutroSeconds: cfg.Timeline.OutroSeconds,
		TitleSeconds: cfg.Timeline.TitleSeconds,
		SFXSeconds:   cfg.Timeline.SFXSeconds,
		Width:        cfg.Render.Width,
		Height:       cfg.Render.Height,
		FrameRate:    cfg.Render.FrameRate,
		SourcePath:   cfg.Paths.InputVideo,
		Workspace:    cfg.Paths.Workspace,
	}
}

// Compile builds the project document. Spine clip i (0-based) is placed at
// i*Spacing regardless of clip durations. Every clip needs a title.
func Compile(clips []editspec.Clip, opts Options) (*Document, error) {
	for i, clip := range clips {
		if strings.TrimSpace(clip.TitleText()) == "" {
			return nil, services.Wrap(services.ErrSchema, "timeline", "compile",
				fmt.Sprintf("clip %d (%s) has no title", i+1, clip.ID), nil)
		}
		if clip.Start >= clip.End {
			return nil, services.Wrap(services.ErrSchema, "timeline", "compile",
				fmt.Sprintf("clip %d (%s) start must be before end", i+1, clip.ID), nil)
		}
	}

	b := newBuilder(opts)
	spine := Spine{Clips: make([]Clip, 0, len(clips))}
	var total float64
	for i, clip := range clips {
		offset := float64(i) * opts.Spacing
		spine.Clips = append(spine.Clips, b.clip(clip, offset))
		total = math.Max(total, offset+clip.Duration())
	}

	doc := &Document{
		Version: Version,
		Resources: Resources{
			Formats: []Format{{
				ID:            formatID,
				Name:          fmt.Sprintf("FFVideoFormat%dx%dp%d", opts.Width, opts.Height, opts.FrameRate),
				FrameDuration: fmt.Sprintf("1/%ds", opts.FrameRate),
				Width:         opts.Width,
				Height:        opts.Height,
			}},
			Assets:  b.assets,
			Effects: []Effect{{ID: titleID, Name: "Basic Title", UID: titleUID}},
		},
		Library: Library{Events: []Event{{
			Name: eventName,
			Projects: []Project{{
				Name: opts.ProjectName,
				Sequence: Sequence{
					Format:   formatID,
					Duration: FormatTime(total),
					TCStart:  "0s",
					TCFormat: "NDF",
					Spine:    spine,
				},
			}},
		}}},
	}
	return doc, nil
}

type builder struct {
	opts   Options
	assets []Asset
	byName map[string]string
}

func newBuilder(opts Options) *builder {
	b := &builder{opts: opts, byName: make(map[string]string)}
	b.assets = append(b.assets, Asset{
		ID:       sourceID,
		Name:     strings.TrimSuffix(filepath.Base(opts.SourcePath), filepath.Ext(opts.SourcePath)),
		Src:      fileURL(opts.SourcePath),
		Start:    "0s",
		HasVideo: "1",
		HasAudio: "1",
		Format:   formatID,
	})
	return b
}

// asset registers a template asset once and returns its resource id.
func (b *builder) asset(kind, name string) string {
	key := kind + "/" + name
	if id, ok := b.byName[key]; ok {
		return id
	}
	id := fmt.Sprintf("r%d", len(b.assets)+3)
	b.byName[key] = id
	asset := Asset{ID: id, Name: name, Src: b.templateSrc(kind, name), Start: "0s"}
	if kind == "sfx" {
		asset.HasAudio = "1"
	} else {
		asset.HasVideo = "1"
		asset.HasAudio = "1"
	}
	b.assets = append(b.assets, asset)
	return id
}

func (b *builder) templateSrc(kind, name string) string {
	file := name
	if kind == "sfx" && filepath.Ext(name) == "" {
		file = name + ".wav"
	}
	path := filepath.Join(templatesDir, kind, file)
	if b.opts.Workspace != "" {
		path = filepath.Join(b.opts.Workspace, path)
	}
	return fileURL(path)
}

func (b *builder) clip(clip editspec.Clip, offset float64) Clip {
	out := Clip{
		Name:     clip.TitleText(),
		Offset:   FormatTime(offset),
		Start:    FormatTime(clip.Start),
		Duration: FormatTime(clip.Duration()),
	}

	dressing := clip.Dressing
	if dressing != nil && dressing.Intro != nil {
		out.AssetClips = append(out.AssetClips, AssetClip{
			Name:     "intro",
			Ref:      b.asset("intros", *dressing.Intro),
			Lane:     overlayLane,
			Offset:   FormatTime(clip.Start),
			Duration: FormatTime(b.opts.IntroSeconds),
		})
	}
	out.AssetClips = append(out.AssetClips, AssetClip{
		Name:     clip.ID,
		Ref:      sourceID,
		Offset:   FormatTime(clip.Start),
		Start:    FormatTime(clip.Start),
		Duration: FormatTime(clip.Duration()),
	})
	if dressing != nil && dressing.Outro != nil {
		out.AssetClips = append(out.AssetClips, AssetClip{
			Name:     "outro",
			Ref:      b.asset("outros", *dressing.Outro),
			Lane:     overlayLane,
			Offset:   FormatTime(math.Max(clip.Start, clip.End-b.opts.OutroSeconds)),
			Duration: FormatTime(b.opts.OutroSeconds),
		})
	}

	for _, cue := range clip.Cues() {
		out.Titles = append(out.Titles, Title{
			Name:     cue.Text,
			Ref:      titleID,
			Lane:     titleLane,
			Offset:   FormatTime(cue.Start),
			Duration: FormatTime(b.opts.TitleSeconds),
			Text:     cue.Text,
		})
	}

	if dressing != nil {
		for _, cue := range dressing.SFX {
			out.Audio = append(out.Audio, Audio{
				Name:     cue.SFX,
				Ref:      b.asset("sfx", cue.SFX),
				Lane:     sfxLane,
				Offset:   FormatTime(cue.Time),
				Duration: FormatTime(b.opts.SFXSeconds),
				Role:     "effects",
			})
		}
		for _, name := range dressing.Transitions {
			out.Transitions = append(out.Transitions, Transition{
				Name:   name,
				Offset: FormatTime(clip.Start),
			})
		}
	}
	return out
}

func fileURL(path string) string {
	if path == "" {
		return ""
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

// Compiler reads the augmented edit spec and writes the FCPXML artifact.
type Compiler struct {
	store  *artifacts.Store
	opts   Options
	logger *slog.Logger
}

// NewCompiler builds a compiler over the workspace store.
func NewCompiler(cfg *config.Config, store *artifacts.Store, logger *slog.Logger) *Compiler {
	return &Compiler{
		store:  store,
		opts:   OptionsFromConfig(cfg),
		logger: logging.NewComponentLogger(logger, "timeline"),
	}
}

// Build compiles clips and writes the timeline document.
func (c *Compiler) Build(ctx context.Context, clips []editspec.Clip) (*Document, error) {
	doc, err := Compile(clips, c.opts)
	if err != nil {
		return nil, err
	}
	data, err := doc.Encode()
	if err != nil {
		return nil, err
	}
	if err := c.store.WriteBytes(artifacts.Timeline, data); err != nil {
		return nil, err
	}
	logging.WithContext(ctx, c.logger).Info("timeline written",
		logging.Int("clips", len(clips)),
		logging.String("path", c.store.Path(artifacts.Timeline)),
	)
	return doc, nil
}
