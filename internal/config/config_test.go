package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pixal/internal/config"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsAnchorPathsAtWorkspace(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	workspace := t.TempDir()
	t.Setenv("PIXAL_WORKSPACE", workspace)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent")
	}
	if cfg.Paths.Workspace != workspace {
		t.Fatalf("unexpected workspace: got %q want %q", cfg.Paths.Workspace, workspace)
	}
	if want := filepath.Join(workspace, "assets", "meta", "transcript.json"); cfg.Paths.Transcript != want {
		t.Fatalf("unexpected transcript path: got %q want %q", cfg.Paths.Transcript, want)
	}
	if want := filepath.Join(workspace, "outputs", "shorts"); cfg.ShortsDir() != want {
		t.Fatalf("unexpected shorts dir: got %q want %q", cfg.ShortsDir(), want)
	}
	if want := filepath.Join(workspace, "runs"); cfg.Outputs.RunsDir != want {
		t.Fatalf("unexpected runs dir: %q", cfg.Outputs.RunsDir)
	}
	if cfg.Runtime.EncoderTimeoutSeconds != 0 || cfg.Runtime.ProbeTimeoutSeconds != 0 {
		t.Fatal("expected no encoder/probe timeout by default")
	}
	if cfg.Validation.MaxDurationSeconds != 60 || cfg.Validation.MinWidth != 720 || cfg.Validation.MinHeight != 1280 {
		t.Fatalf("unexpected validation defaults: %+v", cfg.Validation)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Logging.Dir, cfg.Paths.MetaDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
	if _, err := os.Stat(cfg.ShortsDir()); !os.IsNotExist(err) {
		t.Fatalf("expected shorts dir to be created lazily, stat err=%v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	workspace := t.TempDir()
	path := writeConfig(t, "pixal.toml", `
[paths]
workspace = "`+workspace+`"
transcript = "custom/transcript.json"

[runtime]
run_id_mode = "UUID"
encoder_timeout_seconds = 90

[validation]
max_duration_seconds = 45.0

[publish]
default_visibility = "Unlisted"
tags = ["Shorts", "shorts", " clips "]
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config file to be used: %q %v", resolved, exists)
	}
	if want := filepath.Join(workspace, "custom", "transcript.json"); cfg.Paths.Transcript != want {
		t.Fatalf("unexpected transcript: %q", cfg.Paths.Transcript)
	}
	if cfg.Runtime.RunIDMode != "uuid" {
		t.Fatalf("expected lowercased run id mode, got %q", cfg.Runtime.RunIDMode)
	}
	if cfg.Runtime.EncoderTimeoutSeconds != 90 {
		t.Fatalf("unexpected encoder timeout: %d", cfg.Runtime.EncoderTimeoutSeconds)
	}
	if cfg.Validation.MaxDurationSeconds != 45 {
		t.Fatalf("unexpected max duration: %v", cfg.Validation.MaxDurationSeconds)
	}
	if cfg.Validation.MaxSizeMB != 256 {
		t.Fatalf("expected untouched default max size, got %v", cfg.Validation.MaxSizeMB)
	}
	if cfg.Publish.DefaultVisibility != "unlisted" {
		t.Fatalf("unexpected visibility: %q", cfg.Publish.DefaultVisibility)
	}
	if strings.Join(cfg.Publish.Tags, ",") != "shorts,clips" {
		t.Fatalf("unexpected tags: %v", cfg.Publish.Tags)
	}
}

func TestLoadYAML(t *testing.T) {
	workspace := t.TempDir()
	path := writeConfig(t, "pixal.yaml", `
paths:
  workspace: `+workspace+`
outputs:
  runs_dir: archive
runtime:
  enable_run_ids: false
  ffmpeg_bin: /opt/ffmpeg/bin/ffmpeg
render:
  font_size: 48
`)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected yaml config to exist")
	}
	if cfg.Runtime.EnableRunIDs {
		t.Fatal("expected run ids disabled")
	}
	if cfg.Runtime.FFmpegBin != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected ffmpeg bin: %q", cfg.Runtime.FFmpegBin)
	}
	if cfg.Render.FontSize != 48 || cfg.Render.Width != 1080 {
		t.Fatalf("unexpected render settings: %+v", cfg.Render)
	}
	if want := filepath.Join(workspace, "archive"); cfg.Outputs.RunsDir != want {
		t.Fatalf("unexpected runs dir: %q", cfg.Outputs.RunsDir)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"run id mode": "[runtime]\nrun_id_mode = \"sequence\"\n",
		"timeout":     "[runtime]\nprobe_timeout_seconds = -1\n",
		"visibility":  "[publish]\ndefault_visibility = \"friends\"\n",
		"limits":      "[validation]\nmin_duration_seconds = 90.0\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, "pixal.toml", "[paths]\nworkspace = \""+t.TempDir()+"\"\n"+body)
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatalf("expected validation error for %s", name)
			}
		})
	}
}

func TestLoadCredentialsPrefersEnvironment(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("OPENAI_API_KEY=from-file\nCLAUDE_API_KEY=claude-file\nEMAIL_ADDRESS=ops@example.com\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("CLAUDE_API_KEY", "")
	for _, key := range config.OptionalCredentials {
		t.Setenv(key, "")
	}

	creds, err := config.LoadCredentials(envPath)
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if got := creds.Get("OPENAI_API_KEY"); got != "from-env" {
		t.Fatalf("expected environment to win, got %q", got)
	}
	if got := creds.Get("CLAUDE_API_KEY"); got != "claude-file" {
		t.Fatalf("expected file fallback, got %q", got)
	}
	if missing := creds.MissingRequired(); len(missing) != 0 {
		t.Fatalf("unexpected missing required: %v", missing)
	}
	missing := creds.MissingOptional()
	if len(missing) != len(config.OptionalCredentials)-1 {
		t.Fatalf("unexpected missing optional: %v", missing)
	}
	if creds.Source() != envPath {
		t.Fatalf("unexpected source: %q", creds.Source())
	}
}

func TestLoadCredentialsMissingFile(t *testing.T) {
	for _, key := range config.RequiredCredentials {
		t.Setenv(key, "")
	}
	creds, err := config.LoadCredentials(filepath.Join(t.TempDir(), "absent.env"))
	if err != nil {
		t.Fatalf("missing env file should not fail: %v", err)
	}
	if got := creds.MissingRequired(); len(got) != 2 {
		t.Fatalf("expected both required credentials missing, got %v", got)
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("PIXAL_WORKSPACE", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "pixal.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config should load cleanly: exists=%v err=%v", exists, err)
	}
}
