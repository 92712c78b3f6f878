package captions_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pixal/internal/artifacts"
	"pixal/internal/captions"
	"pixal/internal/editspec"
	"pixal/internal/logging"
	"pixal/internal/testsupport"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{2.9996, "00:00:03,000"},
		{61.25, "00:01:01,250"},
		{3725.004, "01:02:05,004"},
		{-4, "00:00:00,000"},
	}
	for _, tt := range tests {
		if got := captions.FormatTimestamp(tt.in); got != tt.want {
			t.Fatalf("FormatTimestamp(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSRTOverlapsAndClamps(t *testing.T) {
	cues := []editspec.TimedCue{
		{Start: 9, Text: "  before clip  "},
		{Start: 11, Text: "one"},
		{Start: 11.5, Text: "two"},
	}
	got := captions.FormatSRT(cues, 10, 2)
	want := "1\n00:00:00,000 --> 00:00:02,000\nbefore clip\n" +
		"\n2\n00:00:01,000 --> 00:00:03,000\none\n" +
		"\n3\n00:00:01,500 --> 00:00:03,500\ntwo\n"
	if got != want {
		t.Fatalf("FormatSRT mismatch:\n%q\nwant\n%q", got, want)
	}
	if captions.FormatSRT(nil, 0, 2) != "" {
		t.Fatal("expected empty output for no cues")
	}
}

func TestPackWritesFilePerClip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := artifacts.NewStore(cfg)
	packer := captions.NewPacker(cfg, store, logging.NewNop())

	stale := store.SubtitlePath("clip_009")
	testsupport.WriteText(t, stale, "old")

	clips := []editspec.Clip{
		{
			ID:       "clip_001",
			Start:    100,
			End:      120,
			Title:    editspec.StringPtr("Clutch"),
			Captions: []editspec.Caption{editspec.PlainCaption("no way"), editspec.TimedCaption(105, "yes way")},
			Dressing: &editspec.Dressing{CaptionStyle: "pop_zoom", Transitions: []string{"glitch"}},
		},
		{ID: "clip_002", Start: 200, End: 230},
	}

	result, err := packer.Pack(context.Background(), clips)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if len(result.Subtitles) != 2 || len(result.Manifests) != 2 {
		t.Fatalf("expected two subtitle/manifest files, got %+v", result)
	}

	first := testsupport.ReadText(t, store.SubtitlePath("clip_001"))
	if !strings.Contains(first, "00:00:00,000 --> 00:00:02,000\nno way") ||
		!strings.Contains(first, "00:00:05,000 --> 00:00:07,000\nyes way") {
		t.Fatalf("unexpected srt: %q", first)
	}
	if got := testsupport.ReadText(t, store.SubtitlePath("clip_002")); got != "" {
		t.Fatalf("expected empty subtitle file, got %q", got)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale subtitle should be removed: %v", err)
	}

	index, err := store.ReadClipIndex()
	if err != nil {
		t.Fatalf("ReadClipIndex: %v", err)
	}
	if len(index) != 2 || index[0].ClipID != "clip_001" || index[1].ClipID != "clip_002" {
		t.Fatalf("index = %+v", index)
	}
	if index[0].CaptionStyle == nil || *index[0].CaptionStyle != "pop_zoom" {
		t.Fatalf("caption style = %v", index[0].CaptionStyle)
	}
	if index[1].Title != nil || index[1].CaptionStyle != nil {
		t.Fatalf("expected null title/style for second clip: %+v", index[1])
	}
	if index[0].SRT != filepath.ToSlash(filepath.Join("outputs", "capsynth", "subtitles", "clip_001.srt")) {
		t.Fatalf("srt path = %q", index[0].SRT)
	}

	manifest, err := store.ReadManifest("clip_001")
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if manifest.Duration != 20 || len(manifest.Transitions) != 1 {
		t.Fatalf("manifest = %+v", manifest)
	}
}
