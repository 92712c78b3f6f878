package render_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"pixal/internal/artifacts"
	"pixal/internal/editspec"
	"pixal/internal/logging"
	"pixal/internal/render"
	"pixal/internal/services"
	"pixal/internal/testsupport"
)

type call struct {
	binary string
	args   []string
}

type fakeRunner struct {
	calls  []call
	failAt int
}

func (f *fakeRunner) Run(_ context.Context, binary string, args []string) error {
	f.calls = append(f.calls, call{binary: binary, args: append([]string(nil), args...)})
	output := args[len(args)-1]
	if err := os.WriteFile(output, []byte("video"), 0o644); err != nil {
		return err
	}
	if f.failAt > 0 && len(f.calls) == f.failAt {
		return services.Wrap(services.ErrExternalTool, "render", binary, "exited with code 1", nil)
	}
	return nil
}

func argValue(t *testing.T, args []string, flag string) string {
	t.Helper()
	idx := slices.Index(args, flag)
	if idx < 0 || idx+1 >= len(args) {
		t.Fatalf("flag %s missing from %v", flag, args)
	}
	return args[idx+1]
}

func TestEscapeDrawtextLeavesNoUnescapedSpecials(t *testing.T) {
	escaped := render.EscapeDrawtext(`it's 50% "on":time`)
	if escaped != `it\'s 50\% "on"\:time` {
		t.Fatalf("escaped = %q", escaped)
	}
	for i, r := range escaped {
		if r != ':' && r != '%' && r != '\'' {
			continue
		}
		backslashes := 0
		for j := i - 1; j >= 0 && escaped[j] == '\\'; j-- {
			backslashes++
		}
		if backslashes%2 == 0 {
			t.Fatalf("unescaped %q at %d in %q", r, i, escaped)
		}
	}
	if got := render.EscapeDrawtext(`a\b`); got != `a\\b` {
		t.Fatalf("backslash escape = %q", got)
	}
}

// nextToken splits s the way ffmpeg's av_get_token does: backslash escapes
// the next byte, single quotes wrap literal text, and unescaped trailing
// whitespace is dropped.
func nextToken(s, term string) (string, string) {
	s = strings.TrimLeft(s, " \n\t\r")
	var out []byte
	end := 0
	i := 0
	for i < len(s) && !strings.ContainsRune(term, rune(s[i])) {
		switch c := s[i]; {
		case c == '\\' && i+1 < len(s):
			out = append(out, s[i+1])
			i += 2
			end = len(out)
		case c == '\'':
			i++
			for i < len(s) && s[i] != '\'' {
				out = append(out, s[i])
				i++
			}
			i++
			end = len(out)
		default:
			out = append(out, c)
			i++
			if !strings.ContainsRune(" \n\t\r", rune(c)) {
				end = len(out)
			}
		}
	}
	if i > len(s) {
		i = len(s)
	}
	return string(out[:end]), s[i:]
}

// drawtextValues parses a filter chain into the option values each drawtext
// filter receives after graph and option unescaping.
func drawtextValues(t *testing.T, chain string) []map[string]string {
	t.Helper()
	var filters []map[string]string
	rest := chain
	for rest != "" {
		name, after := nextToken(rest, "=,;[")
		args := ""
		if strings.HasPrefix(after, "=") {
			args, after = nextToken(after[1:], "[],;")
		}
		if name == "drawtext" {
			values := map[string]string{}
			opts := args
			for opts != "" {
				eq := strings.IndexByte(opts, '=')
				if eq < 0 {
					t.Fatalf("option without value in %q", args)
				}
				key := opts[:eq]
				var value string
				value, opts = nextToken(opts[eq+1:], ":")
				values[key] = value
				opts = strings.TrimPrefix(opts, ":")
			}
			filters = append(filters, values)
		}
		rest = strings.TrimPrefix(after, ",")
	}
	return filters
}

func TestCaptionTextSurvivesFilterParsing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	opts := render.OptionsFromConfig(cfg)
	texts := []string{
		"it's over",
		"GG: 100%",
		`back\slash [sic], then; more`,
		"%{localtime}",
	}
	var captions []editspec.Caption
	for i, text := range texts {
		captions = append(captions, editspec.TimedCaption(float64(i+1), text))
	}
	clip := editspec.Clip{Start: 0, End: 10, Captions: captions}

	filters := drawtextValues(t, render.VideoFilter(clip, opts))
	if len(filters) != len(texts) {
		t.Fatalf("expected %d drawtext filters, got %d", len(texts), len(filters))
	}
	for i, values := range filters {
		if values["text"] != texts[i] {
			t.Fatalf("caption %d: text = %q, want %q", i, values["text"], texts[i])
		}
		if values["expansion"] != "none" {
			t.Fatalf("caption %d: expansion = %q", i, values["expansion"])
		}
		if values["enable"] == "" || values["fontcolor"] != "white" {
			t.Fatalf("caption %d: options split wrong: %v", i, values)
		}
	}
}

func TestArgsShape(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	opts := render.OptionsFromConfig(cfg)
	clip := editspec.Clip{
		ID:       "clip_001",
		Start:    12.5,
		End:      40,
		Captions: []editspec.Caption{editspec.TimedCaption(15, "GG: 100%")},
	}
	args := render.Args(clip, opts, "/out/clip_001.mp4")

	if argValue(t, args, "-ss") != "12.5" || argValue(t, args, "-t") != "27.5" {
		t.Fatalf("unexpected seek/duration in %v", args)
	}
	if argValue(t, args, "-r") != "30" || argValue(t, args, "-movflags") != "+faststart" {
		t.Fatalf("unexpected rate/movflags in %v", args)
	}
	if argValue(t, args, "-af") != "volume=1.0" {
		t.Fatalf("unexpected audio filter %v", args)
	}
	vf := argValue(t, args, "-vf")
	if !strings.HasPrefix(vf, "crop=ih*1080/1920:ih,scale=1080:1920,drawtext=") {
		t.Fatalf("unexpected filter chain %q", vf)
	}
	if !strings.Contains(vf, `text=GG\\: 100\\%:expansion=none`) || !strings.Contains(vf, "fontsize=56:borderw=3") {
		t.Fatalf("caption filter = %q", vf)
	}
	if !strings.Contains(vf, "enable='between(t,2.5,4.5)'") {
		t.Fatalf("caption window = %q", vf)
	}
	if args[len(args)-1] != "/out/clip_001.mp4" {
		t.Fatalf("output not last: %v", args)
	}
}

func TestEmphasisStyle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	opts := render.OptionsFromConfig(cfg)
	clip := editspec.Clip{
		Start:    0,
		End:      5,
		Captions: []editspec.Caption{editspec.PlainCaption("boom")},
		Dressing: &editspec.Dressing{CaptionStyle: "impact_flash"},
	}
	if vf := render.VideoFilter(clip, opts); !strings.Contains(vf, "fontsize=64:borderw=4") {
		t.Fatalf("expected emphasis styling: %q", vf)
	}
}

func TestRenderAllWritesOrderedOutputs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := artifacts.NewStore(cfg)
	runner := &fakeRunner{}
	engine := render.NewEngine(cfg, store, runner, logging.NewNop())

	stale := store.ShortPath("clip_007")
	testsupport.WriteFile(t, stale, 10)

	clips := []editspec.Clip{
		{Start: 0, End: 10},
		{ID: "highlight-b", Start: 20, End: 25},
	}
	rendered, err := engine.RenderAll(context.Background(), clips)
	if err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	if len(rendered) != 2 || rendered[0].ClipID != "clip_001" || rendered[1].ClipID != "highlight-b" {
		t.Fatalf("rendered = %+v", rendered)
	}
	if filepath.Base(runner.calls[1].args[len(runner.calls[1].args)-1]) != "highlight-b.mp4" {
		t.Fatalf("unexpected output for second clip: %v", runner.calls[1].args)
	}
	if runner.calls[0].binary != "ffmpeg" {
		t.Fatalf("binary = %q", runner.calls[0].binary)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale short should be removed: %v", err)
	}
}

func TestRenderAllAbortsOnEncoderFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := artifacts.NewStore(cfg)
	runner := &fakeRunner{failAt: 2}
	engine := render.NewEngine(cfg, store, runner, logging.NewNop())

	clips := []editspec.Clip{{Start: 0, End: 1}, {Start: 2, End: 3}, {Start: 4, End: 5}}
	rendered, err := engine.RenderAll(context.Background(), clips)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool failure, got %v", err)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("expected render to stop after failing clip, got %d calls", len(runner.calls))
	}
	if len(rendered) != 1 {
		t.Fatalf("expected one successful render, got %d", len(rendered))
	}
	if _, err := os.Stat(store.ShortPath("clip_002")); !os.IsNotExist(err) {
		t.Fatalf("failed output should be removed: %v", err)
	}
}

func TestExecRunnerNonZeroExit(t *testing.T) {
	testsupport.StubBinaries(t, map[string]string{"ffmpeg-fail": "echo 'bad filter' >&2\nexit 3\n"})
	err := render.ExecRunner{}.Run(context.Background(), "ffmpeg-fail", []string{"-y"})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "code 3") || !strings.Contains(err.Error(), "bad filter") {
		t.Fatalf("error lacks detail: %v", err)
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	err := render.ExecRunner{}.Run(context.Background(), "pixal-no-such-encoder", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool failure, got %v", err)
	}
}
