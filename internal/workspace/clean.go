package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pixal/internal/config"
	"pixal/internal/services"
)

// Clean targets.
const (
	TargetOutputs = "outputs"
	TargetMeta    = "meta"
	TargetAll     = "all"
)

// Targets lists the accepted clean targets.
func Targets() []string { return []string{TargetOutputs, TargetMeta, TargetAll} }

const keepFile = ".gitkeep"

// Clean removes generated data for target and returns what was removed.
// Unknown targets fail with ErrUnknownTarget before anything is touched.
func Clean(cfg *config.Config, target string) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(target)) {
	case TargetOutputs:
		return cleanOutputs(cfg)
	case TargetMeta:
		return cleanMeta(cfg)
	case TargetAll:
		removed, err := cleanOutputs(cfg)
		if err != nil {
			return removed, err
		}
		meta, err := cleanMeta(cfg)
		return append(removed, meta...), err
	default:
		return nil, services.Wrap(services.ErrUnknownTarget, "", "clean",
			fmt.Sprintf("%q (expected one of %s)", target, strings.Join(Targets(), ", ")), nil)
	}
}

func cleanOutputs(cfg *config.Config) ([]string, error) {
	var removed []string
	for _, dir := range []string{cfg.ShortsDir(), cfg.CapsynthDir(), cfg.ValidationDir(), cfg.Outputs.RunsDir} {
		if _, err := os.Stat(dir); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return removed, fmt.Errorf("inspect %s: %w", dir, err)
		}
		if err := os.RemoveAll(dir); err != nil {
			return removed, fmt.Errorf("remove %s: %w", dir, err)
		}
		removed = append(removed, dir)
	}
	return removed, nil
}

// cleanMeta removes regular files directly inside the meta directory,
// keeping subdirectories and .gitkeep.
func cleanMeta(cfg *config.Config) ([]string, error) {
	entries, err := os.ReadDir(cfg.Paths.MetaDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", cfg.Paths.MetaDir, err)
	}
	var removed []string
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == keepFile {
			continue
		}
		path := filepath.Join(cfg.Paths.MetaDir, entry.Name())
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("remove %s: %w", path, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}
