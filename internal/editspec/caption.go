package editspec

import (
	"bytes"
	"encoding/json"
	"strings"
)

// CaptionKind distinguishes bare-string captions from timed cues.
type CaptionKind int

const (
	// Plain captions carry text only and inherit the clip start.
	Plain CaptionKind = iota
	// Timed captions carry an absolute source-video start time.
	Timed
)

// Caption is an authored caption cue.
type Caption struct {
	Kind  CaptionKind
	Start float64
	Text  string
}

// TimedCue is a caption resolved to an absolute start time.
type TimedCue struct {
	Start float64 `json:"start"`
	Text  string  `json:"text"`
}

// PlainCaption builds a caption without timing.
func PlainCaption(text string) Caption { return Caption{Kind: Plain, Text: text} }

// TimedCaption builds a caption anchored at start.
func TimedCaption(start float64, text string) Caption {
	return Caption{Kind: Timed, Start: start, Text: text}
}

// Normalize resolves the caption against the owning clip's start time.
func (c Caption) Normalize(clipStart float64) TimedCue {
	if c.Kind == Timed {
		return TimedCue{Start: c.Start, Text: c.Text}
	}
	return TimedCue{Start: clipStart, Text: c.Text}
}

// NormalizeCaptions resolves every caption of a clip in order.
func NormalizeCaptions(captions []Caption, clipStart float64) []TimedCue {
	out := make([]TimedCue, 0, len(captions))
	for _, c := range captions {
		out = append(out, c.Normalize(clipStart))
	}
	return out
}

// JoinedText returns all caption texts separated by single spaces.
func JoinedText(captions []Caption) string {
	parts := make([]string, 0, len(captions))
	for _, c := range captions {
		if t := strings.TrimSpace(c.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// MarshalJSON writes plain captions as bare strings and timed captions as objects.
func (c Caption) MarshalJSON() ([]byte, error) {
	if c.Kind == Plain {
		return json.Marshal(c.Text)
	}
	return json.Marshal(TimedCue{Start: c.Start, Text: c.Text})
}

// UnmarshalJSON accepts a bare string or an object with text and optional start.
func (c *Caption) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return schemaErr("captions", "empty caption")
	}
	switch data[0] {
	case '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return schemaErr("captions", "invalid caption string")
		}
		*c = PlainCaption(text)
		return nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return schemaErr("captions", "invalid caption object")
		}
		rawText, ok := obj["text"]
		if !ok {
			return schemaErr("captions", "caption object missing text")
		}
		var text string
		if err := json.Unmarshal(rawText, &text); err != nil {
			return schemaErr("captions", "caption text must be a string")
		}
		rawStart, ok := obj["start"]
		if !ok || isNull(rawStart) {
			*c = PlainCaption(text)
			return nil
		}
		var start float64
		if err := json.Unmarshal(rawStart, &start); err != nil {
			return schemaErr("captions", "caption start must be a number")
		}
		*c = TimedCaption(start, text)
		return nil
	default:
		return schemaErr("captions", "caption must be a string or object")
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
