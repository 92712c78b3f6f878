// Package validation implements the pre-publish gate.
//
// The gate enumerates rendered shorts in lexicographic order, probes each one,
// joins clip index metadata by file stem and applies the platform rules. A
// probe failure invalidates only that clip. The report is always persisted to
// outputs/validation/report.json and depends only on directory contents, so
// repeated runs over unchanged files produce identical bytes. An empty shorts
// directory is a normal, invalid result rather than an error.
package validation
