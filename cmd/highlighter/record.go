package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rywkoo/highlight-clipper/internal/history"
	"github.com/rywkoo/highlight-clipper/internal/logging"
	"github.com/rywkoo/highlight-clipper/internal/pipeline"
)

// runRecorder writes one run to the ledger. A nil recorder records nothing,
// and ledger failures are logged rather than failing the run.
type runRecorder struct {
	store  *history.Store
	runID  string
	logger *slog.Logger
}

func startRecording(ctx context.Context, store *history.Store, run history.Run, logger *slog.Logger) *runRecorder {
	if store == nil {
		return nil
	}
	run.Status = history.StatusRunning
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if err := store.Start(ctx, run); err != nil {
		logging.WarnWithContext(logger, "run ledger unavailable", "history",
			logging.String(logging.FieldErrorHint, "check state_dir permissions"),
			logging.String(logging.FieldImpact, "this run will not appear in history"),
			logging.Error(err),
		)
		return nil
	}
	return &runRecorder{store: store, runID: run.ID, logger: logger}
}

func (r *runRecorder) finish(ctx context.Context, res pipeline.Result, runErr error) {
	if r == nil {
		return
	}
	// The run context may already be cancelled; the final row still has to land.
	ctx = context.WithoutCancel(ctx)
	if err := r.store.Finish(ctx, r.runID, outcomeFor(res, runErr)); err != nil {
		logging.WarnWithContext(r.logger, "run ledger update failed", "history",
			logging.String(logging.FieldErrorHint, "check state_dir permissions"),
			logging.String(logging.FieldImpact, "history shows this run as running"),
			logging.Error(err),
		)
	}
}

func outcomeFor(res pipeline.Result, runErr error) history.Outcome {
	out := history.Outcome{
		Status:   history.StatusCompleted,
		Duration: res.Duration,
	}
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		out.Status = history.StatusInterrupted
		out.Error = runErr.Error()
	default:
		out.Status = history.StatusFailed
		out.Error = runErr.Error()
	}

	clips := make(map[int]pipeline.Clip, len(res.Clips))
	for _, clip := range res.Clips {
		clips[clip.Index] = clip
	}
	for i, w := range res.Windows {
		row := history.Window{
			Index:   i,
			Start:   w.Start,
			End:     w.End,
			Trigger: w.Trigger,
			Kinds:   w.Kinds.String(),
		}
		if clip, ok := clips[i]; ok {
			row.ClipPath = clip.Path
			row.ClipRel = clip.Rel
		}
		out.Windows = append(out.Windows, row)
	}
	for _, kw := range res.Keywords {
		out.Keywords = append(out.Keywords, history.Keyword{
			Keyword:   kw.Keyword,
			Excerpt:   kw.Excerpt,
			Timestamp: kw.Timestamp,
			Whole:     kw.Whole,
		})
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, history.Warning{
			Provider: w.Source,
			Message:  w.Kind + ": " + w.Message,
		})
	}
	return out
}
