package augment_test

import (
	"bytes"
	"context"
	"os"
	"slices"
	"testing"

	"pixal/internal/artifacts"
	"pixal/internal/augment"
	"pixal/internal/config"
	"pixal/internal/editspec"
	"pixal/internal/logging"
	"pixal/internal/testsupport"
)

func sampleClips() []editspec.Clip {
	return []editspec.Clip{
		{ID: "clip_001", Start: 10, End: 30, Title: editspec.StringPtr("One"), Captions: []editspec.Caption{editspec.PlainCaption("hi")}},
		{ID: "clip_002", Start: 100, End: 101},
		{Start: 200, End: 260},
	}
}

func TestAugmentDressesEveryClip(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithConfig(func(c *config.Config) { c.Augment.Seed = 42 }))
	store := artifacts.NewStore(cfg)

	out, err := augment.New(cfg, store, logging.NewNop()).Augment(context.Background(), sampleClips())
	if err != nil {
		t.Fatalf("Augment: %v", err)
	}
	if len(out) != 3 || out[2].ID != "clip_003" {
		t.Fatalf("unexpected clips: %+v", out)
	}
	for _, clip := range out {
		d := clip.Dressing
		if d == nil {
			t.Fatalf("clip %s not dressed", clip.ID)
		}
		if len(d.Transitions) != 2 {
			t.Fatalf("expected 2 transitions, got %v", d.Transitions)
		}
		for _, tr := range d.Transitions {
			if !slices.Contains(augment.Transitions, tr) {
				t.Fatalf("unknown transition %q", tr)
			}
		}
		if n := len(d.SFX); n < 1 || n > 3 {
			t.Fatalf("expected 1-3 sfx cues, got %d", n)
		}
		for i, cue := range d.SFX {
			if cue.Time < clip.Start || cue.Time > clip.End {
				t.Fatalf("cue %v outside clip window %v-%v", cue.Time, clip.Start, clip.End)
			}
			if i > 0 && cue.Time < d.SFX[i-1].Time {
				t.Fatalf("cues not ascending: %+v", d.SFX)
			}
			if !slices.Contains(augment.SoundEffects, cue.SFX) {
				t.Fatalf("unknown sfx %q", cue.SFX)
			}
		}
		if !slices.Contains(augment.CaptionStyles, d.CaptionStyle) {
			t.Fatalf("unknown caption style %q", d.CaptionStyle)
		}
	}
	if out[0].TitleText() != "One" || len(out[0].Captions) != 1 {
		t.Fatalf("authored fields not preserved: %+v", out[0])
	}

	stored, err := store.ReadAugmented()
	if err != nil {
		t.Fatalf("ReadAugmented: %v", err)
	}
	if len(stored) != 3 || stored[0].Dressing == nil {
		t.Fatalf("unexpected stored spec: %+v", stored)
	}
}

func TestAugmentSeedIsReproducible(t *testing.T) {
	read := func() []byte {
		cfg := testsupport.NewConfig(t, testsupport.WithConfig(func(c *config.Config) { c.Augment.Seed = 7 }))
		store := artifacts.NewStore(cfg)
		if _, err := augment.New(cfg, store, logging.NewNop()).Augment(context.Background(), sampleClips()); err != nil {
			t.Fatalf("Augment: %v", err)
		}
		data, err := os.ReadFile(store.Path(artifacts.AugmentedEditSpec))
		if err != nil {
			t.Fatalf("read augmented: %v", err)
		}
		return data
	}
	if first, second := read(), read(); !bytes.Equal(first, second) {
		t.Fatalf("seeded output differs:\n%s\n---\n%s", first, second)
	}
}
