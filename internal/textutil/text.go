package textutil

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns the NFC form of s with surrounding whitespace trimmed.
func Normalize(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// RuneLen counts characters of the NFC-normalized string.
func RuneLen(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}

// Truncate shortens s to at most limit runes, replacing the tail with "..."
// when it had to cut.
func Truncate(s string, limit int) string {
	s = norm.NFC.String(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// CollapseSpace replaces runs of whitespace with a single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
