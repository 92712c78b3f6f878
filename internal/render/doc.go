// Package render turns edit-spec clips into ffmpeg invocations and runs them.
//
// Each clip becomes one blocking encoder call: seek to the clip start, crop a
// centered vertical region, scale to the target resolution and burn in one
// drawtext overlay per caption cue. Clips render sequentially in spec order and
// the first encoder failure aborts the stage; a failed output file is removed
// rather than left half-written. There is no retry, and no timeout unless one
// is configured.
package render
