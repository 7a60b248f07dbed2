// Package history keeps a SQLite ledger of processing runs.
//
// Each run records the recording it processed, the preset, its status and,
// once finished, the scheduled windows, the produced clips, the keyword
// annotations and any provider warnings. The ledger is append-mostly: runs
// are started, then finished exactly once. Runs left in the running state by
// a crashed process are marked interrupted by ResetInterrupted.
//
// Schema changes bump schemaVersion in schema.go; users delete history.db to
// adopt the new schema.
package history
