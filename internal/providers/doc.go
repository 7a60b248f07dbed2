// Package providers implements the evidence providers that report candidate
// highlight instants for a recording.
//
// Each provider satisfies Provider and is independently constructible: the
// audio providers read the shared analysis WAV, the emotion provider samples
// video frames and asks a classifier, and the keyword provider searches a
// WhisperX transcript. Providers are read-only over the media and hold no
// per-run state, so the orchestrator runs them concurrently.
package providers
