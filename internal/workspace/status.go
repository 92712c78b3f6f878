package workspace

import (
	"context"
	"errors"
	"os"
	"time"

	"pixal/internal/archive"
	"pixal/internal/artifacts"
	"pixal/internal/config"
	"pixal/internal/ledger"
)

// ledgerTail is how many recent ledger runs a snapshot carries.
const ledgerTail = 5

// ArtifactStatus describes one artifact on disk.
type ArtifactStatus struct {
	Kind     string     `json:"kind"`
	Path     string     `json:"path"`
	Exists   bool       `json:"exists"`
	IsDir    bool       `json:"is_dir"`
	Size     int64      `json:"size_bytes"`
	Items    int        `json:"items,omitempty"`
	Modified *time.Time `json:"modified,omitempty"`
}

// Snapshot is the status report for a workspace.
type Snapshot struct {
	Workspace string           `json:"workspace"`
	Artifacts []ArtifactStatus `json:"artifacts"`
	LatestRun *archive.Entry   `json:"latest_run,omitempty"`
	Ledger    []ledger.Run     `json:"ledger"`
	Warnings  []string         `json:"warnings"`
}

// Collect builds a snapshot. It never fails: problems reading the archive or
// the ledger are reported as warnings.
func Collect(ctx context.Context, cfg *config.Config) Snapshot {
	store := artifacts.NewStore(cfg)
	snap := Snapshot{
		Workspace: cfg.Paths.Workspace,
		Ledger:    []ledger.Run{},
		Warnings:  []string{},
	}
	for _, kind := range artifacts.AllKinds() {
		snap.Artifacts = append(snap.Artifacts, inspect(store, kind))
	}

	latest, ok, err := archive.Latest(cfg.Outputs.RunsDir)
	switch {
	case err != nil:
		snap.Warnings = append(snap.Warnings, "run archive unreadable: "+err.Error())
	case ok:
		snap.LatestRun = &latest
	}

	runs, err := recentRuns(ctx, cfg)
	if err != nil {
		snap.Warnings = append(snap.Warnings, "ledger unreadable: "+err.Error())
	} else if runs != nil {
		snap.Ledger = runs
	}
	return snap
}

func inspect(store *artifacts.Store, kind artifacts.Kind) ArtifactStatus {
	path := store.Path(kind)
	status := ArtifactStatus{Kind: kind.String(), Path: store.Rel(path), IsDir: kind.IsDir()}
	info, err := os.Stat(path)
	if err != nil {
		return status
	}
	status.Exists = info.IsDir() == kind.IsDir()
	modified := info.ModTime().UTC()
	status.Modified = &modified
	if !info.IsDir() {
		status.Size = info.Size()
		return status
	}
	if entries, err := os.ReadDir(path); err == nil {
		status.Items = len(entries)
		for _, entry := range entries {
			if fi, err := entry.Info(); err == nil && fi.Mode().IsRegular() {
				status.Size += fi.Size()
			}
		}
	}
	return status
}

// recentRuns reads the ledger tail without creating a ledger that does not
// exist yet.
func recentRuns(ctx context.Context, cfg *config.Config) ([]ledger.Run, error) {
	if _, err := os.Stat(cfg.LedgerPath()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	store, err := ledger.Open(cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Recent(ctx, ledgerTail)
}
