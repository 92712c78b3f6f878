package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pixal/internal/config"
	"pixal/internal/logging"
	"pixal/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Logging.Dir = filepath.Join(dir, "logs")
	cfg.Logging.Format = "json"
	cfg.Logging.Level = "info"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("stage complete", logging.String(logging.FieldStage, "render"))

	data, err := os.ReadFile(cfg.LogPath())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := strings.TrimSpace(string(data))
	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("decode log line %q: %v", line, err)
	}
	if payload["msg"] != "stage complete" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if payload["level"] != "info" {
		t.Fatalf("unexpected level: %v", payload["level"])
	}
	if payload["stage"] != "render" {
		t.Fatalf("unexpected stage: %v", payload["stage"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key in %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleHandlerHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "console.log")
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "20240101_120000")
	ctx = services.WithStage(ctx, "render")
	ctx = services.WithRequestID(ctx, "abc")
	logger = logging.NewComponentLogger(logging.WithContext(ctx, logger), "pipeline")
	logger.Info("rendered clip", logging.String("clip_id", "clip_001"))
	logger.Debug("hidden at info")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "INFO [pipeline] Run 20240101_120000 (render) – rendered clip") {
		t.Fatalf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "    - clip_id: clip_001") {
		t.Fatalf("expected field line: %q", out)
	}
	if strings.Contains(out, "correlation_id") {
		t.Fatalf("correlation id should be debug-only: %q", out)
	}
	if strings.Contains(out, "hidden at info") {
		t.Fatalf("debug line leaked: %q", out)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "warn.log")
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logging.WarnWithContext(logger, "clip skipped", "clip_skipped", logging.String(logging.FieldImpact, "clip missing from shorts"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var payload map[string]any
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload[logging.FieldEventType] != "clip_skipped" {
		t.Fatalf("event_type = %v", payload[logging.FieldEventType])
	}
	if payload[logging.FieldErrorHint] != "check logs for details" {
		t.Fatalf("error_hint = %v", payload[logging.FieldErrorHint])
	}
	if payload[logging.FieldImpact] != "clip missing from shorts" {
		t.Fatalf("impact = %v", payload[logging.FieldImpact])
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should never be enabled")
	}
}
