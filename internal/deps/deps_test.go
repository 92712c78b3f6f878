package deps

import (
	"os"
	"path/filepath"
	"testing"

	"pixal/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}

	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("expected blank command to be unconfigured, got %#v", results[2])
	}
}

func TestRequirementsOnlyEncoderRequired(t *testing.T) {
	cfg := config.Default()
	cfg.Runtime.FFmpegBin = "ffmpeg"
	cfg.Runtime.FFprobeBin = "ffprobe"
	cfg.Runtime.YtDLPBin = "yt-dlp"
	cfg.Runtime.WhisperBin = "whisper-cli"

	reqs := Requirements(&cfg)
	if len(reqs) != 4 {
		t.Fatalf("expected 4 requirements, got %d", len(reqs))
	}
	for _, req := range reqs {
		wantOptional := req.Name != "FFmpeg"
		if req.Optional != wantOptional {
			t.Fatalf("requirement %s optional=%v, want %v", req.Name, req.Optional, wantOptional)
		}
		if req.Command == "" {
			t.Fatalf("requirement %s has no command", req.Name)
		}
	}
}

func TestStatusBlocking(t *testing.T) {
	cases := []struct {
		status Status
		want   bool
	}{
		{Status{Available: true}, false},
		{Status{Available: false, Optional: true}, false},
		{Status{Available: false}, true},
	}
	for _, tc := range cases {
		if got := tc.status.Blocking(); got != tc.want {
			t.Fatalf("Blocking(%#v) = %v, want %v", tc.status, got, tc.want)
		}
	}
}
