// Package workspace holds the operator-facing views of a Pixal workspace:
// the status snapshot, the clean targets, and the advisory lock that keeps
// run, step and clean from overlapping.
//
// The lock is non-blocking. A second writer fails fast with
// services.ErrWorkspaceBusy rather than waiting; concurrent pipelines in one
// workspace are unsupported.
package workspace
