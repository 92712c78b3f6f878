package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pixal/internal/editspec"
	"pixal/internal/services"
	"pixal/internal/services/toolexec"
)

// Transcriber runs ffmpeg and whisper.cpp.
type Transcriber struct {
	cfg    Config
	runner toolexec.Runner
}

// New builds a transcriber. A nil runner executes the real binaries.
func New(cfg Config, runner toolexec.Runner) *Transcriber {
	if runner == nil {
		runner = toolexec.Exec{Stage: "transcribe"}
	}
	return &Transcriber{cfg: cfg, runner: runner}
}

// Transcribe converts input into transcript segments using workDir for the
// intermediate audio and JSON files. An empty transcription is an error.
func (t *Transcriber) Transcribe(ctx context.Context, input, workDir string) ([]editspec.TranscriptSegment, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcription work dir: %w", err)
	}
	audio := filepath.Join(workDir, AudioName)
	prefix := filepath.Join(workDir, OutputPrefix)

	if err := t.run(ctx, t.cfg.FFmpegBin, ExtractArgs(input, audio)); err != nil {
		return nil, err
	}
	if err := t.run(ctx, t.cfg.WhisperBin, WhisperArgs(t.cfg.Model, audio, prefix)); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(prefix + ".json")
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcribe", "whisper.cpp", "no JSON output produced", err)
	}
	segments, err := ParseOutput(data)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "transcribe", "whisper.cpp", "no speech segments detected", nil)
	}
	return segments, nil
}

func (t *Transcriber) run(ctx context.Context, binary string, args []string) error {
	if t.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.Timeout)
		defer cancel()
	}
	return t.runner.Run(ctx, binary, args)
}

// ExtractArgs builds the ffmpeg audio extraction command.
func ExtractArgs(input, audio string) []string {
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", input,
		"-vn",
		"-ac", Channels,
		"-ar", SampleRate,
		"-c:a", AudioCodec,
		audio,
	}
}

// WhisperArgs builds the whisper-cli command writing <prefix>.json.
func WhisperArgs(model, audio, prefix string) []string {
	return []string{"-m", model, "-f", audio, "-oj", "-of", prefix, "-np"}
}

type output struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// ParseOutput converts whisper.cpp JSON (millisecond offsets) to segments,
// dropping blank text.
func ParseOutput(data []byte) ([]editspec.TranscriptSegment, error) {
	var out output
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, services.Wrap(services.ErrMalformedArtifact, "transcribe", "parse whisper output", "", err)
	}
	segments := make([]editspec.TranscriptSegment, 0, len(out.Transcription))
	for _, item := range out.Transcription {
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}
		segments = append(segments, editspec.TranscriptSegment{
			Start: float64(item.Offsets.From) / 1000,
			End:   float64(item.Offsets.To) / 1000,
			Text:  text,
		})
	}
	return segments, nil
}
