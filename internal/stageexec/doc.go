// Package stageexec runs a single bound stage with lifecycle logging and
// ledger bookkeeping.
package stageexec
