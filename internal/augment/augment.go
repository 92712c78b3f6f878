// Package augment attaches production dressing to an edit spec: transitions,
// sound effect cues, intro/outro assets and a caption style.
package augment

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"pixal/internal/artifacts"
	"pixal/internal/config"
	"pixal/internal/editspec"
	"pixal/internal/logging"
)

// Choice lists used when dressing a clip.
var (
	Transitions   = []string{"glitch", "vhs_rewind", "spin_snap", "meme_zoom", "wipe_flash"}
	SoundEffects  = []string{"bass_hit", "vine_boom", "camera_flash", "anime_shing"}
	Intros        = []*string{editspec.StringPtr("standard_intro.mp4"), editspec.StringPtr("glitch_intro.mp4"), nil}
	Outros        = []*string{editspec.StringPtr("subscribe_outro.mp4"), editspec.StringPtr("end_punch.mp4"), nil}
	CaptionStyles = []string{"kinetic_bold", "typewriter", "pop_zoom", "impact_flash"}
)

const (
	transitionsPerClip = 2
	minSFXCues         = 1
	maxSFXCues         = 3
)

// Augmenter dresses clips using a seeded random source.
type Augmenter struct {
	store  *artifacts.Store
	seed   uint64
	logger *slog.Logger
}

// New builds an augmenter. A zero augment.seed seeds from the clock.
func New(cfg *config.Config, store *artifacts.Store, logger *slog.Logger) *Augmenter {
	seed := uint64(cfg.Augment.Seed)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Augmenter{
		store:  store,
		seed:   seed,
		logger: logging.NewComponentLogger(logger, "augment"),
	}
}

// Augment dresses every clip in order and writes the augmented edit spec.
// Clip ids and authored fields are preserved.
func (a *Augmenter) Augment(ctx context.Context, clips []editspec.Clip) ([]editspec.Clip, error) {
	if err := editspec.AssignIDs(clips); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(a.seed, a.seed^0x9e3779b97f4a7c15))
	out := make([]editspec.Clip, len(clips))
	for i, clip := range clips {
		clip.Dressing = Dress(rng, clip.Start, clip.End)
		out[i] = clip
	}
	if err := a.store.WriteAugmented(out); err != nil {
		return nil, err
	}
	logging.WithContext(ctx, a.logger).Info("augmented edit spec written",
		logging.Int("clips", len(out)),
		logging.String("path", a.store.Path(artifacts.AugmentedEditSpec)),
	)
	return out, nil
}

// Dress draws the dressing for one clip window.
func Dress(rng *rand.Rand, start, end float64) *editspec.Dressing {
	transitions := make([]string, transitionsPerClip)
	for i := range transitions {
		transitions[i] = pick(rng, Transitions)
	}
	return &editspec.Dressing{
		Transitions:  transitions,
		SFX:          sfxCues(rng, start, end),
		Intro:        pick(rng, Intros),
		Outro:        pick(rng, Outros),
		CaptionStyle: pick(rng, CaptionStyles),
	}
}

// sfxCues places 1-3 cues, one inside each equal segment of the window, so
// cue times are ascending and distinct.
func sfxCues(rng *rand.Rand, start, end float64) []editspec.SFXCue {
	count := minSFXCues + rng.IntN(maxSFXCues-minSFXCues+1)
	segment := (end - start) / float64(count)
	cues := make([]editspec.SFXCue, count)
	for i := range cues {
		at := start + segment*(float64(i)+rng.Float64())
		cues[i] = editspec.SFXCue{Time: math.Round(at*100) / 100, SFX: pick(rng, SoundEffects)}
	}
	return cues
}

func pick[T any](rng *rand.Rand, values []T) T {
	return values[rng.IntN(len(values))]
}
