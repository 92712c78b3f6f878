package generation_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pixal/internal/artifacts"
	"pixal/internal/editspec"
	"pixal/internal/generation"
	"pixal/internal/logging"
	"pixal/internal/services"
	"pixal/internal/testsupport"
)

type fakeCompleter struct {
	replies []string
	errs    []error
	prompts []string
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, _, user string) (string, error) {
	i := len(f.prompts)
	f.prompts = append(f.prompts, user)
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], err
	}
	return "", err
}

func transcript() []editspec.TranscriptSegment {
	return []editspec.TranscriptSegment{
		{Start: 0, End: 5, Text: "warming up"},
		{Start: 10, End: 14, Text: "here they come"},
		{Start: 14, End: 20, Text: "no way that worked"},
		{Start: 40, End: 45, Text: "gg"},
	}
}

func TestDetectDropsInvalidAndDuplicateEntries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := artifacts.NewStore(cfg)
	client := &fakeCompleter{replies: []string{"```json\n[" +
		`{"start": 10, "end": 30, "reason": "clutch ace in round five", "tags": ["#clutch", " "]},` +
		`{"start": 12, "end": 31, "reason": "clutch ace in round five", "tags": []},` +
		`{"start": 50, "end": 40, "reason": "backwards", "tags": []},` +
		`{"end": 70, "reason": "no start", "tags": []},` +
		`{"start": 60, "end": 80, "reason": "chat goes wild"}` +
		"]\n```"}}
	detector := generation.NewDetector(cfg, store, client, logging.NewNop())

	meta := editspec.StreamMeta{StreamTitle: "Ranked grind", Tags: []string{"fps", "ranked"}}
	got, err := detector.Detect(context.Background(), transcript(), meta)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %+v", got)
	}
	if len(got[0].Tags) != 1 || got[0].Tags[0] != "#clutch" {
		t.Fatalf("unexpected tags: %v", got[0].Tags)
	}
	if got[1].Tags == nil {
		t.Fatal("expected empty tag list, got nil")
	}
	if !strings.Contains(client.prompts[0], "Stream Title: Ranked grind") || !strings.Contains(client.prompts[0], "fps, ranked") {
		t.Fatalf("prompt missing stream meta:\n%s", client.prompts[0])
	}

	stored, err := store.ReadCandidates()
	if err != nil {
		t.Fatalf("ReadCandidates: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored candidates, got %d", len(stored))
	}
}

func TestDetectLimitsTranscriptExcerpt(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Detect.TranscriptSegments = 2
	client := &fakeCompleter{replies: []string{`[{"start": 1, "end": 20, "reason": "r", "tags": []}]`}}
	detector := generation.NewDetector(cfg, artifacts.NewStore(cfg), client, logging.NewNop())

	if _, err := detector.Detect(context.Background(), transcript(), editspec.StreamMeta{}); err != nil {
		t.Fatalf("Detect: %v", err)
	}
	prompt := client.prompts[0]
	if !strings.Contains(prompt, "here they come") || strings.Contains(prompt, "no way that worked") {
		t.Fatalf("expected only the first two segments in prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Stream Title: Unknown") {
		t.Fatalf("expected unknown title fallback:\n%s", prompt)
	}
}

func TestDetectFailsWithoutCandidates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := artifacts.NewStore(cfg)
	client := &fakeCompleter{replies: []string{`[{"start": 5, "end": 1, "reason": "bad", "tags": []}]`}}
	detector := generation.NewDetector(cfg, store, client, logging.NewNop())

	_, err := detector.Detect(context.Background(), transcript(), editspec.StreamMeta{})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if store.Exists(artifacts.ClipCandidates) {
		t.Fatal("candidates should not be written on failure")
	}
}

func TestCraftSkipsFailedCandidates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := artifacts.NewStore(cfg)
	client := &fakeCompleter{
		replies: []string{
			`{"title": "  No way!  ", "narration": "wild", "captions": ["no way", {"start": 15, "text": "it worked"}], "overlays": [{"time": 12, "type": "meme", "prompt": "shock"}]}`,
			"",
			"not json at all",
			`{"title": "", "narration": "quiet", "captions": [], "overlays": []}`,
		},
		errs: []error{nil, errors.New("rate limited")},
	}
	crafter := generation.NewCrafter(cfg, store, client, logging.NewNop())
	candidates := []editspec.Candidate{
		{Start: 10, End: 30, Reason: "clutch", Tags: []string{"#clutch"}},
		{Start: 40, End: 60, Reason: "gg"},
		{Start: 70, End: 90, Reason: "bad reply"},
		{Start: 100, End: 120, Reason: "quiet"},
	}

	clips, err := crafter.Craft(context.Background(), transcript(), candidates)
	if err != nil {
		t.Fatalf("Craft: %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("expected 2 clips, got %d", len(clips))
	}
	if clips[0].ID != "clip_001" || clips[1].ID != "clip_002" {
		t.Fatalf("unexpected ids: %s %s", clips[0].ID, clips[1].ID)
	}
	if clips[0].TitleText() != "No way!" || clips[0].Start != 10 || clips[0].End != 30 {
		t.Fatalf("unexpected first clip: %+v", clips[0])
	}
	if len(clips[0].Captions) != 2 || clips[0].Captions[1].Kind != editspec.Timed {
		t.Fatalf("unexpected captions: %+v", clips[0].Captions)
	}
	if clips[1].Title != nil || clips[1].Start != 100 {
		t.Fatalf("expected untitled clip at 100s, got %+v", clips[1])
	}
	if !strings.Contains(client.prompts[0], "here they come\nno way that worked") {
		t.Fatalf("prompt missing window text:\n%s", client.prompts[0])
	}

	stored, err := store.ReadEditSpec()
	if err != nil {
		t.Fatalf("ReadEditSpec: %v", err)
	}
	if len(stored) != 2 || stored[1].ID != "clip_002" {
		t.Fatalf("unexpected stored spec: %+v", stored)
	}
}

func TestCraftFailsWhenNothingSurvives(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	client := &fakeCompleter{errs: []error{errors.New("down")}}
	crafter := generation.NewCrafter(cfg, artifacts.NewStore(cfg), client, logging.NewNop())

	_, err := crafter.Craft(context.Background(), transcript(), []editspec.Candidate{{Start: 1, End: 2, Reason: "r"}})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestWindowText(t *testing.T) {
	got := generation.WindowText(transcript(), 5, 14)
	if len(got) != 1 || got[0] != "here they come" {
		t.Fatalf("unexpected window text: %v", got)
	}
}
