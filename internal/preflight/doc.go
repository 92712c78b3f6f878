// Package preflight provides the readiness checks behind `pixal doctor`.
//
// These checks run in two contexts:
//   - The doctor command prints every result as a table and exits non-zero
//     when any required check fails.
//   - The run and step commands call RunAll before touching the workspace
//     and refuse to start unless the report passes.
//
// Optional checks (secondary credentials, probe/download/transcription
// binaries, the LLM ping) are reported as warnings and never fail the report.
package preflight
