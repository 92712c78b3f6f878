package fileutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"
)

func TestCopyFilePreservesModTime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "nested", "dst.txt")

	if err := os.WriteFile(src, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}
	stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := os.Chtimes(src, stamp, stamp); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world" {
		t.Fatalf("content mismatch: got %q", got)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(stamp) {
		t.Fatalf("mod time = %v, want %v", info.ModTime(), stamp)
	}
}

func TestCopyFileMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.sh")
	dst := filepath.Join(dir, "dst.sh")

	if err := os.WriteFile(src, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CopyFileMode(src, dst, 0o755); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o111 == 0 {
		t.Fatalf("expected executable bits, got %o", info.Mode().Perm())
	}
}

func TestCopyFileVerifiedMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := CopyFileVerified(filepath.Join(dir, "missing"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestCopyTreeFilter(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	for _, rel := range []string{"clip_001.mp4", "clip_002.mp4", "notes.txt", "sub/clip_003.srt"} {
		path := filepath.Join(src, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(rel), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	copied, err := CopyTree(src, dst, func(rel string) bool {
		return strings.HasSuffix(rel, ".mp4") && !strings.Contains(rel, string(filepath.Separator))
	})
	if err != nil {
		t.Fatalf("CopyTree: %v", err)
	}
	sort.Strings(copied)
	if len(copied) != 2 || copied[0] != "clip_001.mp4" || copied[1] != "clip_002.mp4" {
		t.Fatalf("copied = %v", copied)
	}
	if _, err := os.Stat(filepath.Join(dst, "notes.txt")); !os.IsNotExist(err) {
		t.Fatalf("notes.txt should not be copied: %v", err)
	}

	all, err := CopyTree(src, filepath.Join(dir, "all"), nil)
	if err != nil {
		t.Fatalf("CopyTree all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 files, got %v", all)
	}
	if _, err := os.Stat(filepath.Join(dir, "all", "sub", "clip_003.srt")); err != nil {
		t.Fatalf("nested file missing: %v", err)
	}
}

func TestCopyTreeMissingSource(t *testing.T) {
	copied, err := CopyTree(filepath.Join(t.TempDir(), "absent"), t.TempDir(), nil)
	if err != nil || len(copied) != 0 {
		t.Fatalf("expected no-op, got %v %v", copied, err)
	}
}

func TestWriteJSONAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meta", "report.json")
	if err := WriteJSONAtomic(path, map[string]any{"valid": true}); err != nil {
		t.Fatalf("WriteJSONAtomic: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{\n  \"valid\": true\n}\n" {
		t.Fatalf("unexpected content %q", data)
	}
	var decoded map[string]bool
	if err := json.Unmarshal(data, &decoded); err != nil || !decoded["valid"] {
		t.Fatalf("decode: %v %v", decoded, err)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}
