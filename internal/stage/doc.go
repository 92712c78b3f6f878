// Package stage defines the closed set of pipeline stages.
//
// Stage identifiers are an enumeration rather than free-form names so the
// fixed order (transcribe, detect, craft, augment, timeline, render,
// captionpack) can be iterated exhaustively. Each bound stage declares the
// artifacts it consumes and produces; the runner checks consumed artifacts
// before invoking Run and never runs upstream stages implicitly.
package stage
