package providers

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rywkoo/highlight-clipper/internal/highlight"
	"github.com/rywkoo/highlight-clipper/internal/media/ffmpeg"
	"github.com/rywkoo/highlight-clipper/internal/services/emotion"
)

type fakeSampler struct {
	frames []ffmpeg.Frame
	err    error
	dir    string
}

func (f *fakeSampler) SampleFrames(_ context.Context, _ string, dir string, _ float64) ([]ffmpeg.Frame, error) {
	f.dir = dir
	return f.frames, f.err
}

type fakeClassifier struct {
	mu      sync.Mutex
	results map[string]emotion.Classification
	fail    map[string]bool
	calls   int
}

func (f *fakeClassifier) ClassifyFile(_ context.Context, path string) (emotion.Classification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail[path] {
		return emotion.Classification{}, errors.New("classifier unavailable")
	}
	return f.results[path], nil
}

func framesAt(timestamps ...float64) []ffmpeg.Frame {
	out := make([]ffmpeg.Frame, len(timestamps))
	for i, ts := range timestamps {
		out[i] = ffmpeg.Frame{Path: filepath.Join("frames", strings.Repeat("f", i+1)+".jpg"), Timestamp: ts}
	}
	return out
}

func label(name string) emotion.Classification {
	return emotion.Classification{DominantEmotion: name, Emotions: []emotion.Score{{Label: name, Score: 0.9}}}
}

func TestEmotionEmitsNotableFramesInOrder(t *testing.T) {
	frames := framesAt(0, 1, 2, 3)
	sampler := &fakeSampler{frames: frames}
	classifier := &fakeClassifier{results: map[string]emotion.Classification{
		frames[0].Path: label("neutral"),
		frames[1].Path: label("Happy"),
		frames[2].Path: label("sad"),
		frames[3].Path: label("surprise"),
	}}
	p := Emotion{Sampler: sampler, Classifier: classifier, SampleFPS: 1, Notable: []string{"happy", "surprise"}, Concurrency: 3}

	events, err := p.Detect(context.Background(), Media{Path: "in.mp4", WorkDir: "/tmp/run", HasVideo: true})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %+v", events)
	}
	if events[0].Timestamp != 1 || events[0].Annotation.Label != "happy" {
		t.Fatalf("unexpected first event %+v", events[0])
	}
	if events[1].Timestamp != 3 || events[1].Kind != highlight.KindEmotion {
		t.Fatalf("unexpected second event %+v", events[1])
	}
	if sampler.dir != filepath.Join("/tmp/run", "frames") {
		t.Fatalf("unexpected frame dir %q", sampler.dir)
	}
	if classifier.calls != 4 {
		t.Fatalf("expected 4 classifications, got %d", classifier.calls)
	}
}

func TestEmotionToleratesPartialFailures(t *testing.T) {
	frames := framesAt(0, 5)
	classifier := &fakeClassifier{
		results: map[string]emotion.Classification{frames[1].Path: label("happy")},
		fail:    map[string]bool{frames[0].Path: true},
	}
	p := Emotion{Sampler: &fakeSampler{frames: frames}, Classifier: classifier, Notable: []string{"happy"}}
	events, err := p.Detect(context.Background(), Media{HasVideo: true})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(events) != 1 || events[0].Timestamp != 5 {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestEmotionFailsWhenEveryFrameFails(t *testing.T) {
	frames := framesAt(0, 1)
	classifier := &fakeClassifier{fail: map[string]bool{frames[0].Path: true, frames[1].Path: true}}
	p := Emotion{Sampler: &fakeSampler{frames: frames}, Classifier: classifier, Notable: []string{"happy"}}
	if _, err := p.Detect(context.Background(), Media{HasVideo: true}); err == nil {
		t.Fatal("expected error when all frames fail")
	}
}

func TestEmotionRequiresVideo(t *testing.T) {
	p := Emotion{Sampler: &fakeSampler{}, Classifier: &fakeClassifier{}}
	if _, err := p.Detect(context.Background(), Media{}); !errors.Is(err, ErrNoVideo) {
		t.Fatalf("expected ErrNoVideo, got %v", err)
	}
}

func TestEmotionSamplerErrorPropagates(t *testing.T) {
	p := Emotion{Sampler: &fakeSampler{err: errors.New("ffmpeg exploded")}, Classifier: &fakeClassifier{}}
	_, err := p.Detect(context.Background(), Media{HasVideo: true})
	if err == nil || !strings.Contains(err.Error(), "ffmpeg exploded") {
		t.Fatalf("expected sampler error, got %v", err)
	}
}
