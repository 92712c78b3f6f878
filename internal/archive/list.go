package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Entry is one archived run directory.
type Entry struct {
	RunID    string    `json:"run_id"`
	Path     string    `json:"path"`
	Modified time.Time `json:"modified"`
	Manifest *Manifest `json:"manifest,omitempty"`
}

// List returns archived runs newest first. A missing runs directory yields
// no entries.
func List(runsDir string) ([]Entry, error) {
	dirents, err := os.ReadDir(runsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list runs: %w", err)
	}

	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		if !d.IsDir() {
			continue
		}
		info, err := d.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(runsDir, d.Name())
		entry := Entry{RunID: d.Name(), Path: path, Modified: info.ModTime()}
		if manifest, err := readManifest(path); err == nil {
			entry.Manifest = &manifest
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Modified.Equal(entries[j].Modified) {
			return entries[i].RunID > entries[j].RunID
		}
		return entries[i].Modified.After(entries[j].Modified)
	})
	return entries, nil
}

// Latest returns the most recently modified run directory.
func Latest(runsDir string) (Entry, bool, error) {
	entries, err := List(runsDir)
	if err != nil || len(entries) == 0 {
		return Entry{}, false, err
	}
	return entries[0], true, nil
}

func readManifest(root string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(root, ManifestName))
	if err != nil {
		return Manifest{}, err
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, err
	}
	return manifest, nil
}
