// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Info: the duration and geometry summary used by the validation gate
//   - Prober: runs ffprobe with an optional timeout
//
// Duration prefers the container value and falls back to the first video
// stream when the container omits it.
package ffprobe
