package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rywkoo/highlight-clipper/internal/highlight"
	"github.com/rywkoo/highlight-clipper/internal/logging"
	"github.com/rywkoo/highlight-clipper/internal/providers"
	"github.com/rywkoo/highlight-clipper/internal/services"
)

// detect runs every provider concurrently, each under its own timeout. A
// failed provider contributes an empty set and a warning; only cancellation
// of ctx is returned as an error.
func (o *Orchestrator) detect(ctx context.Context, media providers.Media, res *Result) ([][]highlight.SignalEvent, error) {
	stageCtx := services.WithStage(ctx, "detect")
	logger := logging.WithContext(stageCtx, o.logger)

	provs := o.opts.Providers
	sets := make([][]highlight.SignalEvent, len(provs))
	reports := make([]ProviderReport, len(provs))

	var g errgroup.Group
	for i, p := range provs {
		g.Go(func() error {
			pctx, cancel := stageCtx, context.CancelFunc(func() {})
			if o.opts.ProviderTimeout > 0 {
				pctx, cancel = context.WithTimeout(stageCtx, o.opts.ProviderTimeout)
			}
			defer cancel()

			begin := time.Now()
			events, err := safeDetect(pctx, p, media)
			if err == nil && pctx.Err() != nil {
				err = pctx.Err()
			}
			reports[i] = ProviderReport{Kind: p.Kind(), Events: len(events), Elapsed: time.Since(begin), Err: err}
			if err == nil {
				sets[i] = events
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, report := range reports {
		name := report.Kind.String()
		if report.Err != nil {
			report.Events = 0
			res.Providers = append(res.Providers, report)
			warning := providerWarning(name, report.Err, o.opts.ProviderTimeout)
			res.Warnings = append(res.Warnings, warning)
			logging.WarnWithContext(logger, "provider failed; continuing without its evidence", warning.Kind,
				logging.String(logging.FieldProvider, name),
				logging.String(logging.FieldErrorHint, providerHint(report.Kind)),
				logging.String(logging.FieldImpact, "no "+name+" events contribute to this run"),
				logging.Duration("elapsed", report.Elapsed),
				logging.Error(report.Err),
			)
			continue
		}
		res.Providers = append(res.Providers, report)
		logger.Info("provider finished",
			logging.String(logging.FieldProvider, name),
			logging.Int("events", report.Events),
			logging.Duration("elapsed", report.Elapsed),
		)
		for _, ev := range sets[i] {
			if ev.Kind != highlight.KindKeyword || ev.Annotation == nil {
				continue
			}
			res.Keywords = append(res.Keywords, KeywordAnnotation{
				Keyword:   ev.Annotation.Keyword,
				Excerpt:   ev.Annotation.Excerpt,
				Timestamp: ev.Timestamp,
				Whole:     ev.Whole,
			})
		}
	}
	return sets, nil
}

func safeDetect(ctx context.Context, p providers.Provider, media providers.Media) (events []highlight.SignalEvent, err error) {
	defer func() {
		if r := recover(); r != nil {
			events = nil
			err = fmt.Errorf("provider panicked: %v", r)
		}
	}()
	return p.Detect(ctx, media)
}

func providerWarning(name string, err error, timeout time.Duration) Warning {
	kind := "provider_failure"
	wrapped := services.Wrap(services.ErrProviderFailure, "detect", name, "", err)
	if errors.Is(err, context.DeadlineExceeded) {
		kind = "timeout"
		wrapped = services.Wrap(services.ErrProviderFailure, "detect", name, fmt.Sprintf("timed out after %s", timeout), services.ErrTimeout)
	}
	return Warning{Source: name, Kind: kind, Message: wrapped.Error()}
}

func providerHint(kind highlight.Kind) string {
	switch kind {
	case highlight.KindEmotion:
		return "check that the emotion service is reachable at emotion.url"
	case highlight.KindKeyword:
		return "check that uvx and whisperx are installed (highlighter deps)"
	default:
		return "check that the recording has a decodable audio track"
	}
}
