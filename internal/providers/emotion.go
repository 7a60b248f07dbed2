package providers

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rywkoo/highlight-clipper/internal/highlight"
	"github.com/rywkoo/highlight-clipper/internal/logging"
	"github.com/rywkoo/highlight-clipper/internal/media/ffmpeg"
	"github.com/rywkoo/highlight-clipper/internal/services/emotion"
)

// FrameSampler extracts still frames from a recording.
type FrameSampler interface {
	SampleFrames(ctx context.Context, source, dir string, fps float64) ([]ffmpeg.Frame, error)
}

// Classifier labels the dominant emotion of one frame.
type Classifier interface {
	ClassifyFile(ctx context.Context, path string) (emotion.Classification, error)
}

// Emotion samples frames and reports those whose dominant emotion is notable.
// A frame the classifier cannot handle contributes nothing; only a run where
// every frame fails is reported as an error.
type Emotion struct {
	Sampler     FrameSampler
	Classifier  Classifier
	SampleFPS   float64
	Notable     []string
	Concurrency int
	Logger      *slog.Logger
}

func (Emotion) Kind() highlight.Kind { return highlight.KindEmotion }

func (e Emotion) Detect(ctx context.Context, media Media) ([]highlight.SignalEvent, error) {
	if !media.HasVideo {
		return nil, ErrNoVideo
	}
	if e.Sampler == nil || e.Classifier == nil {
		return nil, fmt.Errorf("emotion: provider not configured")
	}
	logger := logging.NewComponentLogger(e.Logger, "emotion")

	dir := filepath.Join(media.WorkDir, "frames")
	frames, err := e.Sampler.SampleFrames(ctx, media.Path, dir, e.SampleFPS)
	if err != nil {
		return nil, fmt.Errorf("emotion: sample frames: %w", err)
	}
	if len(frames) == 0 {
		return nil, nil
	}

	notable := make(map[string]struct{}, len(e.Notable))
	for _, label := range e.Notable {
		notable[strings.ToLower(strings.TrimSpace(label))] = struct{}{}
	}

	results := make([]*highlight.SignalEvent, len(frames))
	var (
		mu       sync.Mutex
		failures int
		lastErr  error
	)
	limit := e.Concurrency
	if limit <= 0 {
		limit = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, frame := range frames {
		g.Go(func() error {
			result, err := e.Classifier.ClassifyFile(gctx, frame.Path)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				mu.Lock()
				failures++
				lastErr = err
				mu.Unlock()
				logger.Debug("frame classification failed",
					logging.Float64("timestamp", frame.Timestamp),
					logging.Error(err),
				)
				return nil
			}
			label, score := result.Dominant()
			if _, ok := notable[label]; !ok {
				return nil
			}
			ev := eventAt(highlight.KindEmotion, frame.Timestamp, &highlight.Annotation{Label: label, Score: score})
			results[i] = &ev
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if failures == len(frames) {
		return nil, fmt.Errorf("emotion: all %d frame classifications failed: %w", failures, lastErr)
	}
	if failures > 0 {
		logger.Info("emotion classification skipped frames",
			logging.Int("failed", failures),
			logging.Int("frames", len(frames)),
		)
	}

	events := make([]highlight.SignalEvent, 0, len(frames))
	for _, ev := range results {
		if ev != nil {
			events = append(events, *ev)
		}
	}
	return events, nil
}
