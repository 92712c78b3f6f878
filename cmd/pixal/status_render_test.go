package main

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestRenderStatusLine(t *testing.T) {
	plain := renderStatusLine("Doctor", statusOK, "ready", false)
	if !strings.HasPrefix(plain, "Doctor:") || !strings.HasSuffix(plain, "[OK] ready") {
		t.Fatalf("unexpected plain line %q", plain)
	}
	if strings.Contains(plain, "\x1b[") {
		t.Fatalf("plain line should not contain ANSI codes: %q", plain)
	}

	colored := renderStatusLine("Doctor", statusError, "", true)
	if !strings.HasPrefix(colored, ansiRed) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected red line, got %q", colored)
	}
	if !strings.Contains(colored, "[FAIL]") {
		t.Fatalf("expected FAIL label, got %q", colored)
	}
}

func TestShouldColorizeNonTerminal(t *testing.T) {
	if shouldColorize(&bytes.Buffer{}) {
		t.Fatal("buffers are never terminals")
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}}, []columnAlignment{alignRight})
	if !strings.Contains(out, "only") || !strings.Contains(out, "A") {
		t.Fatalf("unexpected table:\n%s", out)
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty table without headers")
	}
}

func TestFormatHelpers(t *testing.T) {
	cases := map[int64]string{
		512:     "512 B",
		2048:    "2.0 KiB",
		5 << 20: "5.0 MiB",
		3 << 30: "3.0 GiB",
	}
	for size, want := range cases {
		if got := formatBytes(size); got != want {
			t.Fatalf("formatBytes(%d) = %q, want %q", size, got, want)
		}
	}
	if formatTime(nil) != "-" {
		t.Fatal("nil time should render as -")
	}
	var zero time.Time
	if formatTime(&zero) != "-" {
		t.Fatal("zero time should render as -")
	}
}
