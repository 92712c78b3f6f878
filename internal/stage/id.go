package stage

import (
	"fmt"
	"strings"

	"pixal/internal/services"
)

// ID identifies one pipeline stage.
type ID int

const (
	Transcribe ID = iota + 1
	Detect
	Craft
	Augment
	Timeline
	Render
	CaptionPack
)

var names = map[ID]string{
	Transcribe:  "transcribe",
	Detect:      "detect",
	Craft:       "craft",
	Augment:     "augment",
	Timeline:    "timeline",
	Render:      "render",
	CaptionPack: "captionpack",
}

var aliases = map[string]ID{
	"forge":    Augment,
	"capsynth": CaptionPack,
	"captions": CaptionPack,
}

// String returns the canonical lowercase name.
func (id ID) String() string {
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(id))
}

// Valid reports whether id is one of the enumerated stages.
func (id ID) Valid() bool {
	_, ok := names[id]
	return ok
}

// Sequence returns every stage in execution order.
func Sequence() []ID {
	return []ID{Transcribe, Detect, Craft, Augment, Timeline, Render, CaptionPack}
}

// Names returns the canonical names in execution order.
func Names() []string {
	seq := Sequence()
	out := make([]string, len(seq))
	for i, id := range seq {
		out[i] = id.String()
	}
	return out
}

// ParseID resolves a canonical name or legacy alias, ignoring case.
func ParseID(name string) (ID, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for id, canonical := range names {
		if canonical == key {
			return id, nil
		}
	}
	if id, ok := aliases[key]; ok {
		return id, nil
	}
	msg := fmt.Sprintf("%q is not a stage (expected one of %s)", name, strings.Join(Names(), ", "))
	if key == "vodfetch" {
		msg = "vodfetch is not a standalone stage; use 'pixal run --vod URL'"
	}
	return 0, services.Wrap(services.ErrUnknownStage, "", "parse stage", msg, nil)
}
