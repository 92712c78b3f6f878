package editspec

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TranscriptSegment is one speech span.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Candidate is a highlight window proposed by detection.
type Candidate struct {
	Start  float64  `json:"start"`
	End    float64  `json:"end"`
	Reason string   `json:"reason"`
	Tags   []string `json:"tags"`
}

// Validate checks the candidate window and reason.
func (c Candidate) Validate() error {
	if c.Start < 0 || c.Start >= c.End {
		return schemaErr("end", "start %.3f must be before end %.3f", c.Start, c.End)
	}
	if strings.TrimSpace(c.Reason) == "" {
		return schemaErr("reason", "missing")
	}
	return nil
}

// StreamMeta is optional context about the source stream used by detection.
type StreamMeta struct {
	StreamTitle string          `json:"stream_title"`
	Tags        []string        `json:"tags"`
	PeakMoments json.RawMessage `json:"peak_moments,omitempty"`
}

// IndexEntry is one CLIPS_INDEX.json row cross-referencing a rendered clip.
type IndexEntry struct {
	ClipID       string  `json:"clip_id"`
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Title        *string `json:"title"`
	CaptionStyle *string `json:"caption_style"`
	SRT          string  `json:"srt"`
	Manifest     string  `json:"manifest"`
}

// Manifest is the flat per-clip export written next to each subtitle file.
type Manifest struct {
	ClipID       string            `json:"clip_id"`
	Title        *string           `json:"title"`
	Start        float64           `json:"start"`
	End          float64           `json:"end"`
	Duration     float64           `json:"duration"`
	Intros       *string           `json:"intros"`
	Outros       *string           `json:"outros"`
	Transitions  []string          `json:"transitions"`
	SFX          []SFXCue          `json:"sfx"`
	Overlays     []json.RawMessage `json:"overlays"`
	CaptionStyle *string           `json:"caption_style"`
	Captions     []TimedCue        `json:"captions"`
}

// ManifestFor builds the manifest for a clip; duration is end minus start.
func ManifestFor(clip Clip) Manifest {
	m := Manifest{
		ClipID:      clip.ID,
		Title:       clip.Title,
		Start:       clip.Start,
		End:         clip.End,
		Duration:    clip.Duration(),
		Transitions: []string{},
		SFX:         []SFXCue{},
		Overlays:    nonNil(clip.Overlays),
		Captions:    clip.Cues(),
	}
	if d := clip.Dressing; d != nil {
		m.Intros = d.Intro
		m.Outros = d.Outro
		m.Transitions = nonNil(d.Transitions)
		m.SFX = nonNil(d.SFX)
		if d.CaptionStyle != "" {
			m.CaptionStyle = StringPtr(d.CaptionStyle)
		}
	}
	return m
}

// DecodeTranscript parses a transcript and checks each segment window.
func DecodeTranscript(data []byte) ([]TranscriptSegment, error) {
	var segments []TranscriptSegment
	if err := json.Unmarshal(data, &segments); err != nil {
		return nil, classifyDecode(err)
	}
	for i, seg := range segments {
		if seg.Start < 0 || seg.End < seg.Start {
			return nil, &SchemaError{Index: i + 1, Field: "end", Msg: fmt.Sprintf("invalid segment window %.3f-%.3f", seg.Start, seg.End)}
		}
	}
	return segments, nil
}

// DecodeCandidates parses clip candidates and validates each one.
func DecodeCandidates(data []byte) ([]Candidate, error) {
	var candidates []Candidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, classifyDecode(err)
	}
	for i, c := range candidates {
		if err := c.Validate(); err != nil {
			return nil, withIndex(err, i+1)
		}
	}
	return candidates, nil
}

// DecodeIndex parses CLIPS_INDEX.json.
func DecodeIndex(data []byte) ([]IndexEntry, error) {
	var entries []IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, classifyDecode(err)
	}
	for i, e := range entries {
		if strings.TrimSpace(e.ClipID) == "" {
			return nil, &SchemaError{Index: i + 1, Field: "clip_id", Msg: "missing"}
		}
	}
	return entries, nil
}

// classifyDecode turns type mismatches into schema errors and leaves syntax
// errors untouched.
func classifyDecode(err error) error {
	if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
		return schemaErr(typeErr.Field, "expected %s, got %s", typeErr.Type, typeErr.Value)
	}
	return err
}
