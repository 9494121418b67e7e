// Package runlog persists batch runs and per-file segmentation outcomes in
// SQLite.
//
// Each invocation of the segment command records a run row (input path,
// output directory, model configuration, scale factors) and one row per
// processed volume capturing the routed model stage, object count, duration,
// and any classified failure. The ledger backs the end-of-run summary and
// the --resume flag, which skips inputs whose outputs a previous run already
// produced.
//
// The database is an operational journal, not an archive; schema changes
// bump the version in schema.go and users delete the file to reset.
package runlog
