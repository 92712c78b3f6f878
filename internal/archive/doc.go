// Package archive snapshots the overwrite-in-place output directories into
// runs/<run_id>/ after a successful run and lists previous snapshots.
//
// Run identifiers are second-resolution timestamps by default. Two runs that
// start within the same second share a directory and the later one overwrites
// the earlier snapshot; no guard exists for that case.
package archive
