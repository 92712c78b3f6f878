// Package pipeline is the stage runner.
//
// RunAll acquires the input video (download, local copy, or an existing
// file), runs the fixed stage sequence and archives the outputs under a new
// run id. RunStage executes exactly one stage against the current workspace
// and never runs upstream stages on its own. Every stage execution goes
// through stageexec, which checks consumed artifacts and records the outcome
// in the ledger when one is attached.
package pipeline
