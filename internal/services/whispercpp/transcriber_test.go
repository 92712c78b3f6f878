package whispercpp_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"pixal/internal/services"
	"pixal/internal/services/whispercpp"
)

type fakeRunner struct {
	binaries []string
	output   string
}

func (f *fakeRunner) Run(_ context.Context, binary string, args []string) error {
	f.binaries = append(f.binaries, binary)
	if binary == "whisper-cli" {
		prefix := args[slices.Index(args, "-of")+1]
		return os.WriteFile(prefix+".json", []byte(f.output), 0o644)
	}
	return nil
}

const sample = `{
  "transcription": [
    {"timestamps": {"from": "00:00:00,000", "to": "00:00:02,500"}, "offsets": {"from": 0, "to": 2500}, "text": " Let's go!"},
    {"offsets": {"from": 2500, "to": 3000}, "text": "   "},
    {"offsets": {"from": 3000, "to": 6250}, "text": " No way."}
  ]
}`

func TestTranscribe(t *testing.T) {
	runner := &fakeRunner{output: sample}
	tr := whispercpp.New(whispercpp.Config{FFmpegBin: "ffmpeg", WhisperBin: "whisper-cli", Model: "m.bin"}, runner)

	segments, err := tr.Transcribe(context.Background(), "in.mp4", filepath.Join(t.TempDir(), "work"))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if !slices.Equal(runner.binaries, []string{"ffmpeg", "whisper-cli"}) {
		t.Fatalf("unexpected commands: %v", runner.binaries)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %+v", segments)
	}
	if segments[0].Text != "Let's go!" || segments[0].End != 2.5 {
		t.Fatalf("unexpected first segment: %+v", segments[0])
	}
	if segments[1].Start != 3 || segments[1].End != 6.25 {
		t.Fatalf("unexpected second segment: %+v", segments[1])
	}
}

func TestTranscribeEmpty(t *testing.T) {
	runner := &fakeRunner{output: `{"transcription": []}`}
	tr := whispercpp.New(whispercpp.Config{FFmpegBin: "ffmpeg", WhisperBin: "whisper-cli"}, runner)

	_, err := tr.Transcribe(context.Background(), "in.mp4", t.TempDir())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestParseOutputMalformed(t *testing.T) {
	if _, err := whispercpp.ParseOutput([]byte("{nope")); !errors.Is(err, services.ErrMalformedArtifact) {
		t.Fatalf("expected ErrMalformedArtifact, got %v", err)
	}
}

func TestExtractArgs(t *testing.T) {
	args := whispercpp.ExtractArgs("in.mp4", "out.wav")
	if args[len(args)-1] != "out.wav" || !slices.Contains(args, "16000") || !slices.Contains(args, "-vn") {
		t.Fatalf("unexpected args: %v", args)
	}
}
