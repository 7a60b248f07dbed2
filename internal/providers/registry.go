package providers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/rywkoo/highlight-clipper/internal/config"
	"github.com/rywkoo/highlight-clipper/internal/media/ffmpeg"
	"github.com/rywkoo/highlight-clipper/internal/services/emotion"
	"github.com/rywkoo/highlight-clipper/internal/services/whisperx"
)

// Deps lets callers inject backends; nil fields are built from config.
type Deps struct {
	Sampler     FrameSampler
	Classifier  Classifier
	Transcriber Transcriber
	Logger      *slog.Logger
}

// Build constructs the named providers in order. keywords overrides
// pipeline.keywords when non-empty.
func Build(cfg *config.Config, names []string, keywords []string, deps Deps) ([]Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("providers: config is required")
	}
	if len(keywords) == 0 {
		keywords = cfg.Pipeline.Keywords
	}

	out := make([]Provider, 0, len(names))
	for _, name := range names {
		switch name {
		case config.ProviderLoudness:
			out = append(out, Loudness{
				SilenceThreshDB: cfg.Loudness.SilenceThreshDB,
				MinSilenceMS:    cfg.Loudness.MinSilenceMS,
				FrameMS:         cfg.Loudness.FrameMS,
			})
		case config.ProviderLaughter:
			out = append(out, Laughter{
				FrameMS:    cfg.Laughter.FrameMS,
				Percentile: cfg.Laughter.Percentile,
				BandLowHz:  cfg.Laughter.BandLowHz,
				BandHighHz: cfg.Laughter.BandHighHz,
			})
		case config.ProviderEmotion:
			sampler := deps.Sampler
			if sampler == nil {
				sampler = ffmpeg.New(cfg.FFmpegBinary())
			}
			classifier := deps.Classifier
			if classifier == nil {
				client, err := emotion.New(emotion.Config{
					URL:               cfg.Emotion.URL,
					Device:            cfg.Emotion.Device,
					Timeout:           time.Duration(cfg.Emotion.RequestTimeout) * time.Second,
					RequestsPerSecond: cfg.Emotion.RequestsPerSecond,
				})
				if err != nil {
					return nil, err
				}
				classifier = client
			}
			out = append(out, Emotion{
				Sampler:     sampler,
				Classifier:  classifier,
				SampleFPS:   cfg.Emotion.SampleFPS,
				Notable:     cfg.Emotion.Notable,
				Concurrency: concurrencyFor(cfg.Emotion.RequestsPerSecond),
				Logger:      deps.Logger,
			})
		case config.ProviderKeyword:
			transcriber := deps.Transcriber
			if transcriber == nil {
				transcriber = whisperx.NewService(whisperx.Config{
					Model:       cfg.Keyword.Model,
					CUDAEnabled: cfg.Keyword.CUDAEnabled,
					HFToken:     cfg.Keyword.HFToken,
					Language:    cfg.Keyword.Language,
				})
			}
			out = append(out, Keyword{
				Transcriber:  transcriber,
				Keywords:     keywords,
				ExcerptChars: cfg.Keyword.ExcerptChars,
			})
		default:
			return nil, fmt.Errorf("providers: unknown provider %q", name)
		}
	}
	return out, nil
}

func concurrencyFor(rps float64) int {
	n := int(rps)
	switch {
	case n < 1:
		return 1
	case n > 8:
		return 8
	default:
		return n
	}
}
