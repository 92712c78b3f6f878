// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can tell a
//     missing artifact from a malformed one, or an encoder crash from a bad
//     operator argument, with errors.Is.
//
// Use these helpers when wiring new stage logic so failure reporting stays
// uniform across the pipeline.
package services
