package ytdlp_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"pixal/internal/services"
	"pixal/internal/services/ytdlp"
)

type fakeRunner struct {
	args     []string
	write    bool
	infoJSON string
	err      error
}

func (f *fakeRunner) Run(_ context.Context, _ string, args []string) error {
	f.args = args
	if f.err != nil {
		return f.err
	}
	output := args[slices.Index(args, "-o")+1]
	if f.write {
		if err := os.WriteFile(output, []byte("video"), 0o644); err != nil {
			return err
		}
	}
	if f.infoJSON != "" {
		return os.WriteFile(ytdlp.InfoPath(output), []byte(f.infoJSON), 0o644)
	}
	return nil
}

func TestDownloadReadsInfo(t *testing.T) {
	output := filepath.Join(t.TempDir(), "stream_input.mp4")
	runner := &fakeRunner{write: true, infoJSON: `{"title":"Big Stream","tags":["fps","ranked"],"duration":3600}`}
	client := ytdlp.New("yt-dlp", 0)
	client.Runner = runner

	info, err := client.Download(context.Background(), "https://www.twitch.tv/videos/1", output)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if info.Title != "Big Stream" || len(info.Tags) != 2 {
		t.Fatalf("unexpected info: %+v", info)
	}
	if !slices.Contains(runner.args, ytdlp.DefaultFormat) || runner.args[len(runner.args)-1] != "https://www.twitch.tv/videos/1" {
		t.Fatalf("unexpected args: %v", runner.args)
	}
}

func TestDownloadMissingOutput(t *testing.T) {
	output := filepath.Join(t.TempDir(), "stream_input.mp4")
	client := ytdlp.New("yt-dlp", 0)
	client.Runner = &fakeRunner{}

	_, err := client.Download(context.Background(), "https://example.com/v", output)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestDownloadPropagatesRunnerError(t *testing.T) {
	boom := services.Wrap(services.ErrExternalTool, "fetch", "yt-dlp", "exited with code 1", nil)
	client := ytdlp.New("yt-dlp", 0)
	client.Runner = &fakeRunner{err: boom}

	if _, err := client.Download(context.Background(), "https://example.com/v", filepath.Join(t.TempDir(), "in.mp4")); !errors.Is(err, boom) {
		t.Fatalf("expected runner error, got %v", err)
	}
	if _, err := client.Download(context.Background(), " ", "in.mp4"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for blank url, got %v", err)
	}
}

func TestInfoPath(t *testing.T) {
	if got := ytdlp.InfoPath("/w/stream_input.mp4"); got != "/w/stream_input.info.json" {
		t.Fatalf("InfoPath = %q", got)
	}
}
