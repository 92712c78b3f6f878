package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"pixal/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a normalized config whose workspace is a fresh temp
// directory. Required credentials are populated with placeholder values.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Workspace = filepath.Join(base, "workspace")
	cfgVal.Runtime.EnvFile = filepath.Join(base, "workspace", ".env")
	cfgVal.Credentials = config.StaticCredentials(map[string]string{
		"OPENAI_API_KEY": "test-openai",
		"CLAUDE_API_KEY": "test-claude",
	})

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Normalize(); err != nil {
		t.Fatalf("normalize test config: %v", err)
	}
	if err := os.MkdirAll(builder.cfg.Paths.Workspace, 0o755); err != nil {
		t.Fatalf("mkdir workspace: %v", err)
	}
	return builder.cfg
}

// WithCredentials replaces the credential snapshot.
func WithCredentials(values map[string]string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Credentials = config.StaticCredentials(values)
	}
}

// WithConfig applies an arbitrary mutation before normalization.
func WithConfig(mutate func(*config.Config)) ConfigOption {
	return func(b *configBuilder) {
		mutate(b.cfg)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		stubs := make(map[string]string, len(names))
		for _, name := range names {
			stubs[name] = "exit 0\n"
		}
		StubBinaries(b.t, stubs)
	}
}

// StubBinaries writes shell-script executables named by the map keys, with
// the map values as script bodies, into a temp bin dir prepended to PATH.
// It returns the bin directory.
func StubBinaries(t testing.TB, scripts map[string]string) string {
	t.Helper()

	binDir := filepath.Join(t.TempDir(), "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	for name, body := range scripts {
		target := filepath.Join(binDir, name)
		if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return binDir
}

// Workspace returns the workspace directory backing the generated config.
func Workspace(cfg *config.Config) string {
	return cfg.Paths.Workspace
}
