// Package logs reads the highlighter's JSON log file back for the CLI.
//
// Tail returns the last N lines (negative offset) or everything after a byte
// offset, optionally waiting for new lines so "highlighter logs --follow" can
// poll. A Match predicate narrows both modes to one run's records; Entry
// decodes a record for display.
package logs
