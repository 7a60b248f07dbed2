// Package pipeline turns one recording into highlight clips.
//
// The Orchestrator probes the media, extracts a shared analysis WAV, runs
// every configured evidence provider concurrently, fuses their events into a
// timeline, schedules non-overlapping windows and cuts each window through a
// bounded worker pool. A provider or clip failure degrades the run to a
// warning; only unreadable media, invalid scheduling parameters or
// cancellation fail the run itself.
package pipeline
