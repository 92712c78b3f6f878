package ledger_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"pixal/internal/ledger"
	"pixal/internal/services"
	"pixal/internal/testsupport"
)

func openLedger(t *testing.T) *ledger.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openLedger(t)
	ctx := context.Background()

	runRef, err := store.BeginRun(ctx, "20261016_120000", "run", "https://example.com/vod")
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	ok, err := store.BeginStep(ctx, runRef, "transcribe")
	if err != nil {
		t.Fatalf("BeginStep: %v", err)
	}
	if err := store.FinishStep(ctx, ok, nil); err != nil {
		t.Fatalf("FinishStep: %v", err)
	}
	bad, err := store.BeginStep(ctx, runRef, "render")
	if err != nil {
		t.Fatalf("BeginStep: %v", err)
	}
	renderErr := services.Wrap(services.ErrExternalTool, "render", "ffmpeg", "exited with code 1", nil)
	if err := store.FinishStep(ctx, bad, renderErr); err != nil {
		t.Fatalf("FinishStep: %v", err)
	}
	if err := store.FinishRun(ctx, runRef, renderErr); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	runs, err := store.Recent(ctx, 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one run, got %d", len(runs))
	}
	run := runs[0]
	if run.Status != ledger.StatusFailed || run.ErrorKind != "external_tool_failure" || run.FinishedAt == nil {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.Source != "https://example.com/vod" {
		t.Fatalf("source = %q", run.Source)
	}
	if len(run.Steps) != 2 || run.Steps[0].Stage != "transcribe" || run.Steps[0].Status != ledger.StatusSucceeded {
		t.Fatalf("unexpected steps: %+v", run.Steps)
	}
	if run.Steps[1].Status != ledger.StatusFailed || run.Steps[1].ErrorMessage == "" {
		t.Fatalf("unexpected failed step: %+v", run.Steps[1])
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	store := openLedger(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		ref, err := store.BeginRun(ctx, id, "step", "")
		if err != nil {
			t.Fatalf("BeginRun: %v", err)
		}
		if err := store.FinishRun(ctx, ref, nil); err != nil {
			t.Fatalf("FinishRun: %v", err)
		}
	}
	runs, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "c" || runs[1].RunID != "b" {
		t.Fatalf("unexpected order: %+v", runs)
	}
	if runs[0].Status != ledger.StatusSucceeded || runs[0].Source != "" {
		t.Fatalf("unexpected run: %+v", runs[0])
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := ledger.OpenPath(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := store.BeginRun(context.Background(), "x", "run", ""); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	_ = store.Close()

	reopened, err := ledger.OpenPath(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	runs, err := reopened.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != ledger.StatusRunning {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if errors.Is(err, ledger.ErrSchemaMismatch) {
		t.Fatal("unexpected schema mismatch")
	}
}
