// Package editspec defines the clip data model exchanged between Pixal stages.
//
// It covers transcript segments, clip candidates, authored edit-spec clips and
// their augmented production dressing, the caption tagged variant shared by
// every caption consumer, and the clip index/manifest rows written by the
// caption pack. Clip identity is an explicit clip_id assigned once when the edit
// spec is crafted; specs written without one fall back to ordinal ids on load.
package editspec
