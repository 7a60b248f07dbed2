package providers

import (
	"context"
	"errors"

	"github.com/rywkoo/highlight-clipper/internal/highlight"
)

// Media is the read-only input shared by every provider in one run.
type Media struct {
	// Path is the original recording.
	Path string
	// AudioPath is the mono 16 kHz analysis WAV extracted from Path.
	AudioPath string
	// WorkDir is a scratch directory owned by the run.
	WorkDir  string
	Duration float64
	HasVideo bool
}

// Provider reports interesting instants of one evidence kind.
type Provider interface {
	Kind() highlight.Kind
	Detect(ctx context.Context, media Media) ([]highlight.SignalEvent, error)
}

// ErrNoAudio is returned by audio providers when the run has no analysis WAV.
var ErrNoAudio = errors.New("no analysis audio available")

// ErrNoVideo is returned by the emotion provider for audio-only recordings.
var ErrNoVideo = errors.New("recording has no video stream")

func eventAt(kind highlight.Kind, ts float64, ann *highlight.Annotation) highlight.SignalEvent {
	return highlight.SignalEvent{Timestamp: ts, Kind: kind, Annotation: ann}
}
