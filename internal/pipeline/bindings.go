package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"pixal/internal/artifacts"
	"pixal/internal/augment"
	"pixal/internal/captions"
	"pixal/internal/config"
	"pixal/internal/editspec"
	"pixal/internal/generation"
	"pixal/internal/render"
	"pixal/internal/services/toolexec"
	"pixal/internal/services/whispercpp"
	"pixal/internal/stage"
	"pixal/internal/timeline"
)

// Transcriber converts the input video into transcript segments.
type Transcriber interface {
	Transcribe(ctx context.Context, input, workDir string) ([]editspec.TranscriptSegment, error)
}

// Collaborators overrides the external services behind the stages. Nil
// fields use the configured defaults.
type Collaborators struct {
	Transcriber  Transcriber
	DetectClient generation.Completer
	CraftClient  generation.Completer
	RenderRunner toolexec.Runner
}

// binding adapts a stage body to stage.Stage.
type binding struct {
	id       stage.ID
	consumes []artifacts.Kind
	produces []artifacts.Kind
	run      func(ctx context.Context) error
	health   func(ctx context.Context) stage.Health
}

func (b *binding) ID() stage.ID { return b.id }
func (b *binding) Consumes() []artifacts.Kind { return b.consumes }
func (b *binding) Produces() []artifacts.Kind { return b.produces }
func (b *binding) Run(ctx context.Context) error { return b.run(ctx) }

func (b *binding) HealthCheck(ctx context.Context) stage.Health {
	if b.health == nil {
		return stage.Healthy(b.id.String())
	}
	return b.health(ctx)
}

// DefaultStages binds every stage ID, in sequence order.
func DefaultStages(cfg *config.Config, store *artifacts.Store, logger *slog.Logger, c Collaborators) []stage.Stage {
	transcriber := c.Transcriber
	if transcriber == nil {
		transcriber = whispercpp.New(whispercpp.Config{
			FFmpegBin:  cfg.Runtime.FFmpegBin,
			WhisperBin: cfg.Runtime.WhisperBin,
			Model:      cfg.Runtime.WhisperModel,
			Timeout:    time.Duration(cfg.Runtime.EncoderTimeoutSeconds) * time.Second,
		}, nil)
	}
	detector := generation.NewDetector(cfg, store, c.DetectClient, logger)
	crafter := generation.NewCrafter(cfg, store, c.CraftClient, logger)
	augmenter := augment.New(cfg, store, logger)
	compiler := timeline.NewCompiler(cfg, store, logger)
	engine := render.NewEngine(cfg, store, c.RenderRunner, logger)
	packer := captions.NewPacker(cfg, store, logger)

	return []stage.Stage{
		&binding{
			id:       stage.Transcribe,
			consumes: []artifacts.Kind{artifacts.InputVideo},
			produces: []artifacts.Kind{artifacts.Transcript},
			run: func(ctx context.Context) error {
				workDir, err := os.MkdirTemp("", "pixal-transcribe-")
				if err != nil {
					return fmt.Errorf("create transcription work dir: %w", err)
				}
				defer os.RemoveAll(workDir)
				segments, err := transcriber.Transcribe(ctx, store.Path(artifacts.InputVideo), workDir)
				if err != nil {
					return err
				}
				return store.WriteTranscript(segments)
			},
			health: binariesHealth(stage.Transcribe, cfg.Runtime.FFmpegBin, cfg.Runtime.WhisperBin),
		},
		&binding{
			id:       stage.Detect,
			consumes: []artifacts.Kind{artifacts.Transcript},
			produces: []artifacts.Kind{artifacts.ClipCandidates},
			run: func(ctx context.Context) error {
				transcript, err := store.ReadTranscript()
				if err != nil {
					return err
				}
				meta, err := store.ReadStreamMeta()
				if err != nil {
					return err
				}
				_, err = detector.Detect(ctx, transcript, meta)
				return err
			},
			health: credentialHealth(stage.Detect, cfg, "CLAUDE_API_KEY"),
		},
		&binding{
			id:       stage.Craft,
			consumes: []artifacts.Kind{artifacts.Transcript, artifacts.ClipCandidates},
			produces: []artifacts.Kind{artifacts.EditSpec},
			run: func(ctx context.Context) error {
				transcript, err := store.ReadTranscript()
				if err != nil {
					return err
				}
				candidates, err := store.ReadCandidates()
				if err != nil {
					return err
				}
				_, err = crafter.Craft(ctx, transcript, candidates)
				return err
			},
			health: credentialHealth(stage.Craft, cfg, "OPENAI_API_KEY"),
		},
		&binding{
			id:       stage.Augment,
			consumes: []artifacts.Kind{artifacts.EditSpec},
			produces: []artifacts.Kind{artifacts.AugmentedEditSpec},
			run: func(ctx context.Context) error {
				clips, err := store.ReadEditSpec()
				if err != nil {
					return err
				}
				_, err = augmenter.Augment(ctx, clips)
				return err
			},
		},
		&binding{
			id:       stage.Timeline,
			consumes: []artifacts.Kind{artifacts.AugmentedEditSpec},
			produces: []artifacts.Kind{artifacts.Timeline},
			run: func(ctx context.Context) error {
				clips, err := store.ReadAugmented()
				if err != nil {
					return err
				}
				_, err = compiler.Build(ctx, clips)
				return err
			},
		},
		&binding{
			id:       stage.Render,
			consumes: []artifacts.Kind{artifacts.InputVideo, artifacts.AugmentedEditSpec},
			produces: []artifacts.Kind{artifacts.Shorts},
			run: func(ctx context.Context) error {
				clips, err := store.ReadAugmented()
				if err != nil {
					return err
				}
				_, err = engine.RenderAll(ctx, clips)
				return err
			},
			health: binariesHealth(stage.Render, cfg.Runtime.FFmpegBin),
		},
		&binding{
			id:       stage.CaptionPack,
			consumes: []artifacts.Kind{artifacts.AugmentedEditSpec},
			produces: []artifacts.Kind{artifacts.CaptionExport, artifacts.ClipIndex},
			run: func(ctx context.Context) error {
				clips, err := store.ReadAugmented()
				if err != nil {
					return err
				}
				_, err = packer.Pack(ctx, clips)
				return err
			},
		},
	}
}

func binariesHealth(id stage.ID, binaries ...string) func(context.Context) stage.Health {
	return func(context.Context) stage.Health {
		for _, binary := range binaries {
			if _, err := exec.LookPath(binary); err != nil {
				return stage.Unhealthy(id.String(), fmt.Sprintf("%s not found on PATH", binary))
			}
		}
		return stage.Healthy(id.String())
	}
}

func credentialHealth(id stage.ID, cfg *config.Config, key string) func(context.Context) stage.Health {
	return func(context.Context) stage.Health {
		if cfg.Credentials.Get(key) == "" {
			return stage.Unhealthy(id.String(), key+" not set")
		}
		return stage.Healthy(id.String())
	}
}
