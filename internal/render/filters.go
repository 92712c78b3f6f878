package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"pixal/internal/editspec"
)

var drawtextEscaper = strings.NewReplacer(
	`\`, `\\`,
	`:`, `\:`,
	`'`, `\'`,
	`%`, `\%`,
)

// EscapeDrawtext escapes the characters reserved by the drawtext option
// syntax: backslash, colon, single quote and percent.
func EscapeDrawtext(text string) string {
	return drawtextEscaper.Replace(text)
}

var filtergraphEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`[`, `\[`,
	`]`, `\]`,
	`,`, `\,`,
	`;`, `\;`,
)

// escapeFiltergraph escapes an option value a second time for the filter
// graph parser, which unescapes once before the filter sees its options.
func escapeFiltergraph(value string) string {
	return filtergraphEscaper.Replace(value)
}

// VideoFilter builds the crop, scale and caption chain for a clip.
func VideoFilter(clip editspec.Clip, opts Options) string {
	filters := []string{
		fmt.Sprintf("crop=ih*%d/%d:ih", opts.Width, opts.Height),
		fmt.Sprintf("scale=%d:%d", opts.Width, opts.Height),
	}
	style := opts.styleFor(clip.CaptionStyle())
	for _, cue := range clip.Cues() {
		filters = append(filters, captionFilter(cue, clip.Start, style, opts.CaptionSeconds))
	}
	return strings.Join(filters, ",")
}

// AudioFilter returns the audio chain. Audio passes through unchanged apart
// from the configured filter.
func AudioFilter(_ editspec.Clip, opts Options) string {
	if strings.TrimSpace(opts.AudioFilter) == "" {
		return "volume=1.0"
	}
	return opts.AudioFilter
}

type textStyle struct {
	fontSize    int
	borderWidth int
}

func (o Options) styleFor(captionStyle string) textStyle {
	if captionStyle != "" && strings.EqualFold(captionStyle, o.EmphasisStyle) {
		return textStyle{fontSize: o.EmphasisFontSize, borderWidth: o.EmphasisBorderWidth}
	}
	return textStyle{fontSize: o.FontSize, borderWidth: o.BorderWidth}
}

func captionFilter(cue editspec.TimedCue, clipStart float64, style textStyle, seconds float64) string {
	from := math.Max(0, cue.Start-clipStart)
	return fmt.Sprintf(
		"drawtext=text=%s:expansion=none:fontcolor=white:fontsize=%d:borderw=%d:x=(w-text_w)/2:y=h*0.75:enable='between(t,%s,%s)'",
		escapeFiltergraph(EscapeDrawtext(strings.TrimSpace(cue.Text))),
		style.fontSize,
		style.borderWidth,
		formatSeconds(from),
		formatSeconds(from+seconds),
	)
}

// Args builds the full ffmpeg argument list (without the binary) for a clip.
func Args(clip editspec.Clip, opts Options, output string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(clip.Start),
		"-i", opts.InputPath,
		"-t", formatSeconds(clip.Duration()),
		"-vf", VideoFilter(clip, opts),
		"-af", AudioFilter(clip, opts),
		"-r", strconv.Itoa(opts.FrameRate),
		"-movflags", "+faststart",
		output,
	}
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
