package providers

import (
	"context"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/rywkoo/highlight-clipper/internal/highlight"
	"github.com/rywkoo/highlight-clipper/internal/media/pcm"
)

// Laughter flags frames whose energy in the laughter band rises above a high
// percentile of the recording's own distribution. The threshold is relative,
// so quiet and loud recordings are treated alike.
type Laughter struct {
	FrameMS    int
	Percentile float64
	BandLowHz  float64
	BandHighHz float64
}

func (Laughter) Kind() highlight.Kind { return highlight.KindLaughter }

func (l Laughter) Detect(ctx context.Context, media Media) ([]highlight.SignalEvent, error) {
	if media.AudioPath == "" {
		return nil, ErrNoAudio
	}
	sig, err := pcm.Open(media.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("laughter: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.Events(sig), nil
}

// Events computes laughter events for sig.
func (l Laughter) Events(sig pcm.Signal) []highlight.SignalEvent {
	frameMS := l.FrameMS
	if frameMS <= 0 {
		frameMS = 50
	}
	energy := sig.BandEnergy(frameMS, l.BandLowHz, l.BandHighHz)
	if len(energy) == 0 {
		return nil
	}
	threshold := Threshold(energy, l.Percentile)

	var events []highlight.SignalEvent
	for i, e := range energy {
		if e <= threshold || e <= 0 {
			continue
		}
		events = append(events, eventAt(highlight.KindLaughter, sig.FrameStart(frameMS, i), &highlight.Annotation{Score: e}))
	}
	return events
}

// Threshold returns the p-quantile of values.
func Threshold(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if p <= 0 || p >= 1 {
		p = 0.95
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}
