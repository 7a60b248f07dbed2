package pipeline

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/rywkoo/highlight-clipper/internal/logging"
	"github.com/rywkoo/highlight-clipper/internal/materialize"
	"github.com/rywkoo/highlight-clipper/internal/services"
)

const materializeSource = "materialize"

// materialize cuts every scheduled window with at most Workers encodes in
// flight. A failed clip is logged and dropped; only cancellation is returned.
func (o *Orchestrator) materialize(ctx context.Context, rec Recording, hasVideo bool, res *Result) error {
	stageCtx := services.WithStage(ctx, "materialize")
	logger := logging.WithContext(stageCtx, o.logger)
	windows := res.Windows

	release, err := o.clips.Lock(stageCtx, rec.Name)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		res.Warnings = append(res.Warnings, Warning{Source: materializeSource, Kind: "materialization", Message: err.Error()})
		logging.WarnWithContext(logger, "clip directory busy; no clips written", "materialization",
			logging.String(logging.FieldErrorHint, "wait for the other run on this recording to finish"),
			logging.String(logging.FieldImpact, "windows are reported without clips"),
			logging.Error(err),
		)
		return nil
	}
	defer func() {
		if err := release(); err != nil {
			logger.Debug("clip directory unlock failed", logging.Error(err))
		}
	}()

	src := materialize.Source{Recording: rec.Name, Path: rec.Path, AudioOnly: !hasVideo}
	artifacts := make([]*Clip, len(windows))
	failures := make([]error, len(windows))
	sampler := logging.NewProgressSampler(25)
	var done atomic.Int64

	var g errgroup.Group
	g.SetLimit(o.opts.Workers)
	for i, window := range windows {
		g.Go(func() error {
			if stageCtx.Err() != nil {
				failures[i] = stageCtx.Err()
				return nil
			}
			artifact, err := o.clips.Materialize(stageCtx, src, window, i)
			if err != nil {
				failures[i] = err
			} else {
				artifacts[i] = &artifact
			}
			n := int(done.Add(1))
			if sampler.Observe(n, len(windows)) {
				logger.Info("materialize progress",
					logging.Int("done", n),
					logging.Int("total", len(windows)),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	for i := range windows {
		if artifacts[i] != nil {
			res.Clips = append(res.Clips, *artifacts[i])
			continue
		}
		err := failures[i]
		res.Warnings = append(res.Warnings, Warning{Source: materializeSource, Kind: services.Classify(err), Message: err.Error()})
		logging.WarnWithContext(logger, "clip failed; window dropped", "materialization",
			logging.Int("index", i),
			logging.Window("window", windows[i].Start, windows[i].End),
			logging.String(logging.FieldErrorHint, "inspect the ffmpeg stderr in the error"),
			logging.String(logging.FieldImpact, "this window has no clip"),
			logging.Error(err),
		)
	}
	return nil
}
