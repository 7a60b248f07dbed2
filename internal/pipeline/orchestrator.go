package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rywkoo/highlight-clipper/internal/config"
	"github.com/rywkoo/highlight-clipper/internal/highlight"
	"github.com/rywkoo/highlight-clipper/internal/logging"
	"github.com/rywkoo/highlight-clipper/internal/materialize"
	"github.com/rywkoo/highlight-clipper/internal/media/ffmpeg"
	"github.com/rywkoo/highlight-clipper/internal/providers"
	"github.com/rywkoo/highlight-clipper/internal/services"
)

// AudioExtractor renders the analysis WAV.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, source, dest string) error
}

// ClipMaterializer cuts windows into clip files.
type ClipMaterializer interface {
	Lock(ctx context.Context, recording string) (func() error, error)
	Materialize(ctx context.Context, src materialize.Source, window highlight.ClipWindow, index int) (materialize.Artifact, error)
}

// Options parameterizes one Orchestrator. A preset is just a provider list
// plus scheduler constants.
type Options struct {
	Preset          string
	Providers       []providers.Provider
	Scheduler       config.Scheduler
	Workers         int
	ProviderTimeout time.Duration
	WorkDir         string
	KeepWorkDir     bool
	// DryRun stops after scheduling; no clips are cut.
	DryRun bool
}

// Deps are the external collaborators of an Orchestrator.
type Deps struct {
	Prober       Prober
	Extractor    AudioExtractor
	Materializer ClipMaterializer
	Logger       *slog.Logger
}

// Orchestrator runs the full pipeline for one recording at a time. It holds
// no per-recording state, so one instance may process recordings
// concurrently.
type Orchestrator struct {
	opts      Options
	prober    Prober
	extractor AudioExtractor
	clips     ClipMaterializer
	logger    *slog.Logger
	newRunID  func() string
}

// New builds an Orchestrator.
func New(opts Options, deps Deps) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.WorkDir == "" {
		opts.WorkDir = os.TempDir()
	}
	return &Orchestrator{
		opts:      opts,
		prober:    deps.Prober,
		extractor: deps.Extractor,
		clips:     deps.Materializer,
		logger:    logging.NewComponentLogger(deps.Logger, "pipeline"),
		newRunID:  uuid.NewString,
	}
}

// FromConfig wires an Orchestrator to the real ffprobe, ffmpeg and clip
// materializer described by cfg.
func FromConfig(cfg *config.Config, preset config.ResolvedPreset, provs []providers.Provider, logger *slog.Logger) *Orchestrator {
	return New(Options{
		Preset:          preset.Name,
		Providers:       provs,
		Scheduler:       preset.Scheduler,
		Workers:         cfg.Pipeline.Workers,
		ProviderTimeout: time.Duration(cfg.Pipeline.ProviderTimeout) * time.Second,
		WorkDir:         cfg.Paths.WorkDir,
	}, Deps{
		Prober:       FFprobe{Binary: cfg.FFprobeBinary()},
		Extractor:    ffmpeg.New(cfg.FFmpegBinary()),
		Materializer: materialize.New(cfg, nil, logger),
		Logger:       logger,
	})
}

// WithDryRun makes Process stop after scheduling.
func (o *Orchestrator) WithDryRun(dryRun bool) *Orchestrator {
	o.opts.DryRun = dryRun
	return o
}

// WithKeepWorkDir leaves each run's work directory in place for inspection.
func (o *Orchestrator) WithKeepWorkDir(keep bool) *Orchestrator {
	o.opts.KeepWorkDir = keep
	return o
}

// Process runs one recording through the pipeline. The returned error is
// non-nil only for unreadable media, invalid scheduler constants or
// cancellation; the partial Result is returned alongside it.
func (o *Orchestrator) Process(ctx context.Context, rec Recording) (Result, error) {
	if strings.TrimSpace(rec.Name) == "" {
		rec.Name = strings.TrimSuffix(filepath.Base(rec.Path), filepath.Ext(rec.Path))
	}
	runID := rec.ID
	if runID == "" {
		runID = o.newRunID()
		rec.ID = runID
	}
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithRecording(ctx, rec.Name)
	logger := logging.WithContext(ctx, o.logger)
	started := time.Now()

	res := Result{RunID: runID, Recording: rec, Preset: o.opts.Preset}
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("source_file", rec.Path),
		logging.String("preset", o.opts.Preset),
		logging.Int("providers", len(o.opts.Providers)),
	)

	info, err := o.probe(services.WithStage(ctx, "probe"), rec.Path)
	if err != nil {
		return res, o.failed(logger, err)
	}
	res.Duration = info.Duration
	res.HasVideo = info.HasVideo
	logger.Info("media probed",
		logging.Float64("duration_seconds", info.Duration),
		logging.Bool("has_video", info.HasVideo),
		logging.Bool("has_audio", info.HasAudio),
		logging.String("mime", info.MIME),
	)

	workDir := filepath.Join(o.opts.WorkDir, runID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return res, o.failed(logger, services.Wrap(services.ErrPipeline, "prepare", "workdir", "create work directory", err))
	}
	if !o.opts.KeepWorkDir {
		defer func() {
			if err := os.RemoveAll(workDir); err != nil {
				logger.Debug("work directory cleanup failed", logging.Error(err))
			}
		}()
	}

	media := providers.Media{Path: rec.Path, WorkDir: workDir, Duration: info.Duration, HasVideo: info.HasVideo}
	if info.HasAudio {
		audioPath := filepath.Join(workDir, "audio.wav")
		if err := o.extractor.ExtractAudio(services.WithStage(ctx, "extract"), rec.Path, audioPath); err != nil {
			if ctx.Err() != nil {
				return res, o.failed(logger, ctx.Err())
			}
			return res, o.failed(logger, services.Wrap(services.ErrPipeline, "extract", "ffmpeg", "audio extraction failed", err))
		}
		media.AudioPath = audioPath
	}

	sets, err := o.detect(ctx, media, &res)
	if err != nil {
		return res, o.failed(logger, err)
	}

	res.Timeline = highlight.Aggregate(sets, o.opts.Scheduler.CoalesceEpsilon)
	windows, err := highlight.Schedule(res.Timeline, highlight.ScheduleParams{
		PrePad:   o.opts.Scheduler.PrePad,
		PostPad:  o.opts.Scheduler.PostPad,
		MinGap:   o.opts.Scheduler.MinGap,
		Duration: res.Duration,
	})
	if err != nil {
		return res, o.failed(logger, fmt.Errorf("schedule windows: %w", err))
	}
	res.Windows = windows
	logger.Info("windows scheduled",
		logging.Int("instants", len(res.Timeline)),
		logging.Int("windows", len(windows)),
	)

	if !o.opts.DryRun && len(windows) > 0 {
		if err := o.materialize(ctx, rec, info.HasVideo, &res); err != nil {
			return res, o.failed(logger, err)
		}
	}

	logger.Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("windows", len(res.Windows)),
		logging.Int("clips", len(res.Clips)),
		logging.Int("keywords", len(res.Keywords)),
		logging.Int("warnings", len(res.Warnings)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return res, nil
}

func (o *Orchestrator) failed(logger *slog.Logger, err error) error {
	logger.Error("run failed",
		logging.String(logging.FieldEventType, "run_failure"),
		logging.String("error_kind", services.Classify(err)),
		logging.Error(err),
	)
	return err
}
