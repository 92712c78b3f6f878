package editspec

import (
	"fmt"
	"regexp"
)

// MaxClips bounds a single edit spec so ids stay three digits wide.
const MaxClips = 999

var (
	clipIDPattern = regexp.MustCompile(`^clip_\d{3}$`)
	safeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ClipID formats the ordinal (1-based) clip identifier.
func ClipID(ordinal int) string {
	return fmt.Sprintf("clip_%03d", ordinal)
}

// IsOrdinalID reports whether id has the clip_NNN shape.
func IsOrdinalID(id string) bool {
	return clipIDPattern.MatchString(id)
}

// AssignIDs fills empty clip ids with their ordinal id and rejects duplicates
// or specs longer than MaxClips.
func AssignIDs(clips []Clip) error {
	if len(clips) > MaxClips {
		return schemaErr("", "%d clips exceeds the limit of %d", len(clips), MaxClips)
	}
	seen := make(map[string]int, len(clips))
	for i := range clips {
		if clips[i].ID == "" {
			clips[i].ID = ClipID(i + 1)
		}
		if prev, ok := seen[clips[i].ID]; ok {
			return &SchemaError{Index: i + 1, Field: "clip_id", Msg: fmt.Sprintf("duplicate id %q (also clip %d)", clips[i].ID, prev)}
		}
		seen[clips[i].ID] = i + 1
	}
	return nil
}
