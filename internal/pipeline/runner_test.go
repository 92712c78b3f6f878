package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pixal/internal/archive"
	"pixal/internal/artifacts"
	"pixal/internal/config"
	"pixal/internal/editspec"
	"pixal/internal/ledger"
	"pixal/internal/logging"
	"pixal/internal/pipeline"
	"pixal/internal/services"
	"pixal/internal/services/ytdlp"
	"pixal/internal/stage"
	"pixal/internal/testsupport"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

type fakeTranscriber struct{}

func (fakeTranscriber) Transcribe(context.Context, string, string) ([]editspec.TranscriptSegment, error) {
	return []editspec.TranscriptSegment{
		{Start: 10, End: 14, Text: "here they come"},
		{Start: 14, End: 20, Text: "no way that worked"},
	}, nil
}

type staticCompleter string

func (s staticCompleter) CompleteJSON(context.Context, string, string) (string, error) {
	return string(s), nil
}

// encoderStub writes a small file at the output path, which is the last argument.
type encoderStub struct {
	calls int
	fail  bool
}

func (e *encoderStub) Run(_ context.Context, _ string, args []string) error {
	e.calls++
	if e.fail {
		return services.Wrap(services.ErrExternalTool, "render", "ffmpeg", "exited with code 1", nil)
	}
	return os.WriteFile(args[len(args)-1], []byte("video"), 0o644)
}

type fakeFetcher struct {
	err error
}

func (f fakeFetcher) Download(_ context.Context, _ string, output string) (ytdlp.Info, error) {
	if f.err != nil {
		return ytdlp.Info{}, f.err
	}
	if err := os.WriteFile(output, []byte("vod"), 0o644); err != nil {
		return ytdlp.Info{}, err
	}
	return ytdlp.Info{Title: "Friday ranked", Tags: []string{"fps"}}, nil
}

func collaborators(encoder *encoderStub) pipeline.Collaborators {
	return pipeline.Collaborators{
		Transcriber:  fakeTranscriber{},
		DetectClient: staticCompleter(`[{"start": 10, "end": 25, "reason": "clutch", "tags": ["#clutch"]}]`),
		CraftClient:  staticCompleter(`{"title": "No way", "narration": "wild", "captions": ["no way"], "overlays": []}`),
		RenderRunner: encoder,
	}
}

func newConfig(t *testing.T) *config.Config {
	t.Helper()
	return testsupport.NewConfig(t, testsupport.WithConfig(func(c *config.Config) {
		c.Augment.Seed = 3
	}))
}

func openLedger(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.OpenPath(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunAllArchivesOutputs(t *testing.T) {
	cfg := newConfig(t)
	encoder := &encoderStub{}
	book := openLedger(t)
	source := filepath.Join(t.TempDir(), "vod.mp4")
	testsupport.WriteFile(t, source, 2048)

	runner := pipeline.New(cfg, logging.NewNop(),
		pipeline.WithCollaborators(collaborators(encoder)),
		pipeline.WithLedger(book),
		pipeline.WithClock(func() time.Time { return fixedNow }),
	)
	runID, err := runner.RunAll(context.Background(), pipeline.Source{File: source})
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if runID != "20260314_092653" {
		t.Fatalf("unexpected run id %q", runID)
	}
	if encoder.calls != 1 {
		t.Fatalf("expected one encoder call, got %d", encoder.calls)
	}

	root := filepath.Join(cfg.Outputs.RunsDir, runID)
	if _, err := os.Stat(filepath.Join(root, "shorts", "clip_001.mp4")); err != nil {
		t.Fatalf("archived short missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "capsynth", artifacts.ClipIndexName)); err != nil {
		t.Fatalf("archived clip index missing: %v", err)
	}
	entry, ok, err := archive.Latest(cfg.Outputs.RunsDir)
	if err != nil || !ok {
		t.Fatalf("Latest: ok=%v err=%v", ok, err)
	}
	if entry.Manifest == nil || len(entry.Manifest.Stages) != len(stage.Sequence()) {
		t.Fatalf("unexpected manifest: %+v", entry.Manifest)
	}

	runs, err := book.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != ledger.StatusSucceeded || len(runs[0].Steps) != len(stage.Sequence()) {
		t.Fatalf("unexpected ledger runs: %+v", runs)
	}
}

func TestRunAllFetchSeedsStreamMeta(t *testing.T) {
	cfg := newConfig(t)
	runner := pipeline.New(cfg, logging.NewNop(),
		pipeline.WithCollaborators(collaborators(&encoderStub{})),
		pipeline.WithFetcher(fakeFetcher{}),
		pipeline.WithClock(func() time.Time { return fixedNow }),
	)
	if _, err := runner.RunAll(context.Background(), pipeline.Source{URL: "https://example.com/v/1"}); err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	meta, err := runner.Store().ReadStreamMeta()
	if err != nil {
		t.Fatalf("ReadStreamMeta: %v", err)
	}
	if meta.StreamTitle != "Friday ranked" {
		t.Fatalf("unexpected stream meta: %+v", meta)
	}
}

func TestRunAllFetchFailureSkipsArchive(t *testing.T) {
	cfg := newConfig(t)
	encoder := &encoderStub{}
	book := openLedger(t)
	runner := pipeline.New(cfg, logging.NewNop(),
		pipeline.WithCollaborators(collaborators(encoder)),
		pipeline.WithFetcher(fakeFetcher{err: services.Wrap(services.ErrExternalTool, "fetch", "yt-dlp", "exited with code 1", nil)}),
		pipeline.WithLedger(book),
	)
	_, err := runner.RunAll(context.Background(), pipeline.Source{URL: "https://example.com/v/1"})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if _, statErr := os.Stat(cfg.Outputs.RunsDir); !os.IsNotExist(statErr) {
		t.Fatalf("runs dir should not exist, stat err=%v", statErr)
	}
	if encoder.calls != 0 {
		t.Fatal("no stage should run after a failed fetch")
	}
	runs, err := book.Recent(context.Background(), 1)
	if err != nil || len(runs) != 1 || runs[0].Status != ledger.StatusFailed {
		t.Fatalf("expected failed ledger run, got %+v err=%v", runs, err)
	}
}

func TestRunAllMissingLocalFile(t *testing.T) {
	cfg := newConfig(t)
	runner := pipeline.New(cfg, logging.NewNop())
	_, err := runner.RunAll(context.Background(), pipeline.Source{File: filepath.Join(t.TempDir(), "absent.mp4")})
	if !errors.Is(err, services.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}

func TestRunAllRenderFailureIsFatal(t *testing.T) {
	cfg := newConfig(t)
	encoder := &encoderStub{fail: true}
	testsupport.WriteFile(t, cfg.Paths.InputVideo, 1024)

	runner := pipeline.New(cfg, logging.NewNop(), pipeline.WithCollaborators(collaborators(encoder)))
	_, err := runner.RunAll(context.Background(), pipeline.Source{})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if runner.Store().Exists(artifacts.ClipIndex) {
		t.Fatal("caption pack should not run after a render failure")
	}
	if _, statErr := os.Stat(cfg.Outputs.RunsDir); !os.IsNotExist(statErr) {
		t.Fatal("failed run must not be archived")
	}
}

type spyStage struct {
	id       stage.ID
	consumes []artifacts.Kind
	runs     *[]stage.ID
}

func (s spyStage) ID() stage.ID { return s.id }
func (s spyStage) Consumes() []artifacts.Kind { return s.consumes }
func (s spyStage) Produces() []artifacts.Kind { return nil }
func (s spyStage) Run(context.Context) error {
	*s.runs = append(*s.runs, s.id)
	return nil
}

func TestRunStageMissingInputRunsNothing(t *testing.T) {
	cfg := newConfig(t)
	var runs []stage.ID
	var spies []stage.Stage
	for _, id := range stage.Sequence() {
		spies = append(spies, spyStage{id: id, runs: &runs})
	}
	spies = append(spies, spyStage{id: stage.Craft, consumes: []artifacts.Kind{artifacts.ClipCandidates}, runs: &runs})

	runner := pipeline.New(cfg, logging.NewNop(), pipeline.WithStages(spies...))
	err := runner.RunStage(context.Background(), stage.Craft)
	if !errors.Is(err, services.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("no stage should have run, got %v", runs)
	}

	if err := runner.RunStage(context.Background(), stage.Timeline); err != nil {
		t.Fatalf("RunStage(timeline): %v", err)
	}
	if len(runs) != 1 || runs[0] != stage.Timeline {
		t.Fatalf("expected only timeline to run, got %v", runs)
	}
}

func TestRunStageUnknown(t *testing.T) {
	runner := pipeline.New(newConfig(t), logging.NewNop())
	if err := runner.RunStage(context.Background(), stage.ID(99)); !errors.Is(err, services.ErrUnknownStage) {
		t.Fatalf("expected ErrUnknownStage, got %v", err)
	}
}

func TestHealthCoversEveryStage(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCredentials(map[string]string{"OPENAI_API_KEY": "x"}))
	health := pipeline.New(cfg, logging.NewNop()).Health(context.Background())
	if len(health) != len(stage.Sequence()) {
		t.Fatalf("expected %d entries, got %d", len(stage.Sequence()), len(health))
	}
	for _, h := range health {
		if h.Name == stage.Detect.String() && h.Ready {
			t.Fatal("detect should be unhealthy without CLAUDE_API_KEY")
		}
		if h.Name == stage.Craft.String() && !h.Ready {
			t.Fatalf("craft should be healthy: %+v", h)
		}
	}
}
