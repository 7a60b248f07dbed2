// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, recording names, stage names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     fatal to a run (pipeline failures, validation) or recoverable (provider
//     and materialization failures that only degrade the result).
//
// Use these helpers when wiring new stage logic so failure handling and
// observability stay uniform across the pipeline.
package services
