package captions

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"pixal/internal/editspec"
)

// FormatTimestamp renders seconds as HH:MM:SS,mmm. Negative input clamps to 0.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(math.Round(seconds * 1000))
	ms := total % 1000
	s := (total / 1000) % 60
	m := (total / 60000) % 60
	h := total / 3600000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// FormatSRT renders cues as numbered SRT blocks. Each cue starts at its
// offset from clipStart (never negative) and lasts cueSeconds regardless of
// the next cue. No cues yields an empty string.
func FormatSRT(cues []editspec.TimedCue, clipStart, cueSeconds float64) string {
	if len(cues) == 0 {
		return ""
	}
	var b strings.Builder
	for i, cue := range cues {
		offset := math.Max(0, cue.Start-clipStart)
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteByte('\n')
		b.WriteString(FormatTimestamp(offset))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(offset + cueSeconds))
		b.WriteByte('\n')
		b.WriteString(strings.TrimSpace(cue.Text))
		b.WriteByte('\n')
	}
	return b.String()
}
