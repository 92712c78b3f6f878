// Package artifacts is the typed view of the workspace files stages exchange.
//
// Store resolves every artifact kind to its configured path, reads JSON
// artifacts with error classification (missing, malformed, schema) and writes
// them atomically. It enforces document shape only; business rules live in the
// stages.
package artifacts

// Kind enumerates the fixed set of workspace artifacts.
type Kind int

const (
	InputVideo Kind = iota
	StreamMeta
	Transcript
	ClipCandidates
	EditSpec
	AugmentedEditSpec
	Timeline
	Shorts
	CaptionExport
	ClipIndex
	ValidationReport
)

var kindNames = [...]string{
	InputVideo:        "input_video",
	StreamMeta:        "stream_meta",
	Transcript:        "transcript",
	ClipCandidates:    "clip_candidates",
	EditSpec:          "editspec",
	AugmentedEditSpec: "augmented_editspec",
	Timeline:          "timeline",
	Shorts:            "shorts",
	CaptionExport:     "caption_export",
	ClipIndex:         "clip_index",
	ValidationReport:  "validation_report",
}

// AllKinds lists every kind in pipeline order.
func AllKinds() []Kind {
	return []Kind{
		InputVideo, StreamMeta, Transcript, ClipCandidates, EditSpec,
		AugmentedEditSpec, Timeline, Shorts, CaptionExport, ClipIndex, ValidationReport,
	}
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsDir reports whether the artifact is a directory rather than a file.
func (k Kind) IsDir() bool {
	return k == Shorts || k == CaptionExport
}
