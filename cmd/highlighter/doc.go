// Package main hosts the highlighter CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into pipeline runs
// (run, fetch, plan), run-ledger queries, dependency checks and configuration
// scaffolding. It centralizes configuration resolution and logger setup so
// subcommands can focus on presentation.
//
// Keep this package lean: new behaviour belongs in the internal packages
// first, surfaced here through dedicated commands or flags.
package main
