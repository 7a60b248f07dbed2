package providers

import (
	"context"
	"fmt"

	"github.com/rywkoo/highlight-clipper/internal/highlight"
	"github.com/rywkoo/highlight-clipper/internal/media/pcm"
)

// Loudness finds sustained non-silent stretches and reports the start of
// each. Quiet gaps shorter than MinSilenceMS do not split a stretch.
type Loudness struct {
	SilenceThreshDB float64
	MinSilenceMS    int
	FrameMS         int
}

// Segment is a contiguous non-silent range in seconds.
type Segment struct {
	Start  float64
	End    float64
	PeakDB float64
}

func (Loudness) Kind() highlight.Kind { return highlight.KindLoudness }

func (l Loudness) Detect(ctx context.Context, media Media) ([]highlight.SignalEvent, error) {
	if media.AudioPath == "" {
		return nil, ErrNoAudio
	}
	sig, err := pcm.Open(media.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("loudness: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	segments := l.Segments(sig)
	events := make([]highlight.SignalEvent, 0, len(segments))
	for _, seg := range segments {
		events = append(events, eventAt(highlight.KindLoudness, seg.Start, &highlight.Annotation{
			Label: fmt.Sprintf("%.1fs", seg.End-seg.Start),
			Score: seg.PeakDB,
		}))
	}
	return events, nil
}

// Segments returns the non-silent ranges of sig.
func (l Loudness) Segments(sig pcm.Signal) []Segment {
	frameMS := l.FrameMS
	if frameMS <= 0 {
		frameMS = 10
	}
	levels := sig.Levels(frameMS)
	if len(levels) == 0 {
		return nil
	}
	minSilentFrames := (l.MinSilenceMS + frameMS - 1) / frameMS
	if minSilentFrames < 1 {
		minSilentFrames = 1
	}

	// Mark frames belonging to silent runs long enough to split on.
	silent := make([]bool, len(levels))
	for i := 0; i < len(levels); {
		if levels[i] >= l.SilenceThreshDB {
			i++
			continue
		}
		j := i
		for j < len(levels) && levels[j] < l.SilenceThreshDB {
			j++
		}
		if j-i >= minSilentFrames {
			for k := i; k < j; k++ {
				silent[k] = true
			}
		}
		i = j
	}

	var out []Segment
	for i := 0; i < len(levels); {
		if silent[i] {
			i++
			continue
		}
		j := i
		peak := pcm.SilenceFloorDB
		for j < len(levels) && !silent[j] {
			if levels[j] > peak {
				peak = levels[j]
			}
			j++
		}
		end := sig.FrameStart(frameMS, j)
		if d := sig.Duration(); end > d {
			end = d
		}
		// A stretch made only of short quiet gaps is not loud.
		if peak >= l.SilenceThreshDB {
			out = append(out, Segment{Start: sig.FrameStart(frameMS, i), End: end, PeakDB: peak})
		}
		i = j
	}
	return out
}
