package editspec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SFXCue is a sound effect anchored at an absolute source-video time.
type SFXCue struct {
	Time float64 `json:"time"`
	SFX  string  `json:"sfx"`
}

// Dressing is the production decoration attached by the augment stage.
// Intro and Outro are nil when the clip has no intro/outro asset.
type Dressing struct {
	Transitions  []string
	SFX          []SFXCue
	Intro        *string
	Outro        *string
	CaptionStyle string
}

// Clip is one authored short. Dressing is nil for plain edit specs.
type Clip struct {
	ID        string
	Start     float64
	End       float64
	Title     *string
	Narration string
	Captions  []Caption
	Overlays  []json.RawMessage
	Dressing  *Dressing
}

// Duration returns end minus start.
func (c Clip) Duration() float64 { return c.End - c.Start }

// TitleText returns the title or an empty string when absent.
func (c Clip) TitleText() string {
	if c.Title == nil {
		return ""
	}
	return *c.Title
}

// CaptionStyle returns the augmented caption style, if any.
func (c Clip) CaptionStyle() string {
	if c.Dressing == nil {
		return ""
	}
	return c.Dressing.CaptionStyle
}

// Cues resolves the clip captions to timed cues.
func (c Clip) Cues() []TimedCue { return NormalizeCaptions(c.Captions, c.Start) }

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

type editWire struct {
	ClipID    string            `json:"clip_id,omitempty"`
	Start     float64           `json:"start"`
	End       float64           `json:"end"`
	Title     *string           `json:"title"`
	Narration string            `json:"narration"`
	Captions  []Caption         `json:"captions"`
	Overlays  []json.RawMessage `json:"overlays"`
}

type augmentedWire struct {
	editWire
	Transitions  []string `json:"transitions"`
	SFX          []SFXCue `json:"sfx"`
	Intros       *string  `json:"intros"`
	Outros       *string  `json:"outros"`
	CaptionStyle string   `json:"caption_style"`
}

// MarshalJSON writes the clip in edit-spec shape, adding the dressing keys when
// the clip is augmented. Empty lists are written as [] rather than null.
func (c Clip) MarshalJSON() ([]byte, error) {
	base := editWire{
		ClipID:    c.ID,
		Start:     c.Start,
		End:       c.End,
		Title:     c.Title,
		Narration: c.Narration,
		Captions:  nonNil(c.Captions),
		Overlays:  nonNil(c.Overlays),
	}
	if c.Dressing == nil {
		return json.Marshal(base)
	}
	return json.Marshal(augmentedWire{
		editWire:     base,
		Transitions:  nonNil(c.Dressing.Transitions),
		SFX:          nonNil(c.Dressing.SFX),
		Intros:       c.Dressing.Intro,
		Outros:       c.Dressing.Outro,
		CaptionStyle: c.Dressing.CaptionStyle,
	})
}

var dressingKeys = []string{"transitions", "sfx", "intros", "outros", "caption_style"}

// UnmarshalJSON validates key presence and types while decoding.
// start and end must be numbers with start < end; title may be null or absent.
func (c *Clip) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return schemaErr("", "clip must be a JSON object")
	}
	var out Clip

	if err := decodeOptional(obj, "clip_id", &out.ID); err != nil {
		return err
	}
	out.ID = strings.TrimSpace(out.ID)
	if out.ID != "" && !safeIDPattern.MatchString(out.ID) {
		return schemaErr("clip_id", "%q must contain only letters, digits, '-' or '_'", out.ID)
	}

	if err := decodeRequiredNumber(obj, "start", &out.Start); err != nil {
		return err
	}
	if err := decodeRequiredNumber(obj, "end", &out.End); err != nil {
		return err
	}
	if out.Start < 0 {
		return schemaErr("start", "must not be negative")
	}
	if out.Start >= out.End {
		return schemaErr("end", "start %.3f must be before end %.3f", out.Start, out.End)
	}

	if raw, ok := obj["title"]; ok && !isNull(raw) {
		var title string
		if err := json.Unmarshal(raw, &title); err != nil {
			return schemaErr("title", "must be a string or null")
		}
		out.Title = &title
	}
	if err := decodeOptional(obj, "narration", &out.Narration); err != nil {
		return err
	}

	if raw, ok := obj["captions"]; ok && !isNull(raw) {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return schemaErr("captions", "must be a list")
		}
		out.Captions = make([]Caption, 0, len(items))
		for i, item := range items {
			var caption Caption
			if err := caption.UnmarshalJSON(item); err != nil {
				return schemaErr("captions", "entry %d: %s", i+1, messageOf(err))
			}
			out.Captions = append(out.Captions, caption)
		}
	}
	if raw, ok := obj["overlays"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &out.Overlays); err != nil {
			return schemaErr("overlays", "must be a list")
		}
	}

	if hasAny(obj, dressingKeys) {
		dressing := &Dressing{}
		if err := decodeOptional(obj, "transitions", &dressing.Transitions); err != nil {
			return err
		}
		if err := decodeOptional(obj, "sfx", &dressing.SFX); err != nil {
			return err
		}
		if err := decodeOptionalString(obj, "intros", &dressing.Intro); err != nil {
			return err
		}
		if err := decodeOptionalString(obj, "outros", &dressing.Outro); err != nil {
			return err
		}
		var style *string
		if err := decodeOptionalString(obj, "caption_style", &style); err != nil {
			return err
		}
		if style != nil {
			dressing.CaptionStyle = *style
		}
		out.Dressing = dressing
	}

	*c = out
	return nil
}

func decodeRequiredNumber(obj map[string]json.RawMessage, key string, dst *float64) error {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return schemaErr(key, "missing")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return schemaErr(key, "must be a number")
	}
	return nil
}

func decodeOptional[T any](obj map[string]json.RawMessage, key string, dst *T) error {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return schemaErr(key, "unexpected type: %s", typeName(raw))
	}
	return nil
}

func decodeOptionalString(obj map[string]json.RawMessage, key string, dst **string) error {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		*dst = nil
		return nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return schemaErr(key, "must be a string or null")
	}
	*dst = &value
	return nil
}

func hasAny(obj map[string]json.RawMessage, keys []string) bool {
	for _, key := range keys {
		if _, ok := obj[key]; ok {
			return true
		}
	}
	return false
}

func typeName(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "empty"
	}
	switch raw[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "list"
	case 't', 'f':
		return "bool"
	default:
		return "number"
	}
}

func messageOf(err error) string {
	if se, ok := err.(*SchemaError); ok {
		return se.Msg
	}
	return err.Error()
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}

// DecodeClips parses an edit-spec document. Syntax errors are returned as-is
// (callers classify them as malformed); shape violations return *SchemaError.
// Missing clip ids are filled with ordinal ids and duplicates are rejected.
func DecodeClips(data []byte) ([]Clip, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, classifyDecode(err)
	}
	clips := make([]Clip, 0, len(items))
	for i, item := range items {
		var clip Clip
		if err := clip.UnmarshalJSON(item); err != nil {
			return nil, withIndex(err, i+1)
		}
		clips = append(clips, clip)
	}
	if err := AssignIDs(clips); err != nil {
		return nil, err
	}
	return clips, nil
}

// EncodeClips renders clips as an indented JSON array with a trailing newline.
func EncodeClips(clips []Clip) ([]byte, error) {
	data, err := json.MarshalIndent(nonNil(clips), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode clips: %w", err)
	}
	return append(data, '\n'), nil
}
