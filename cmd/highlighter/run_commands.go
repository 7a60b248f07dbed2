package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rywkoo/highlight-clipper/internal/history"
	"github.com/rywkoo/highlight-clipper/internal/ingest"
	"github.com/rywkoo/highlight-clipper/internal/logging"
	"github.com/rywkoo/highlight-clipper/internal/pipeline"
	"github.com/rywkoo/highlight-clipper/internal/preflight"
	"github.com/rywkoo/highlight-clipper/internal/providers"
)

// runFlags are shared by run, fetch and plan.
type runFlags struct {
	preset   string
	keywords []string
	prePad   float64
	postPad  float64
	minGap   float64
	workers  int
	noStore  bool
	json     bool
	keepWork bool
}

func (f *runFlags) register(cmd *cobra.Command, withStore bool) {
	flags := cmd.Flags()
	flags.StringVarP(&f.preset, "preset", "p", "", "Provider preset (loudness, balanced, full or a configured name)")
	flags.StringSliceVarP(&f.keywords, "keywords", "k", nil, "Keywords to search the transcript for (overrides pipeline.keywords)")
	flags.Float64Var(&f.prePad, "pre-pad", 0, "Seconds of context before each trigger")
	flags.Float64Var(&f.postPad, "post-pad", 0, "Seconds of context after each trigger")
	flags.Float64Var(&f.minGap, "min-gap", 0, "Minimum seconds between the end of one window and the start of the next")
	flags.IntVarP(&f.workers, "workers", "w", 0, "Concurrent clip encodes (overrides pipeline.workers)")
	flags.BoolVar(&f.json, "json", false, "Print the result as JSON")
	flags.BoolVar(&f.keepWork, "keep-work", false, "Keep the per-run work directory (extracted audio, frames, transcript)")
	if withStore {
		flags.BoolVar(&f.noStore, "no-store", false, "Do not record the run in history")
	}
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "run <media-file>",
		Short: "Detect highlights in a local recording and cut them into clips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.execute(cmd, &flags, false, func(ing *ingest.Ingestor) (ingest.Upload, error) {
				return ing.Local(args[0])
			})
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Download a remote video with yt-dlp, then process it like run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.execute(cmd, &flags, false, func(ing *ingest.Ingestor) (ingest.Upload, error) {
				return ing.Download(cmd.Context(), args[0])
			})
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "plan <media-file>",
		Short: "Run detection and scheduling only; no clips are cut and nothing is recorded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.noStore = true
			return ctx.execute(cmd, &flags, true, func(*ingest.Ingestor) (ingest.Upload, error) {
				path := strings.TrimSpace(args[0])
				name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				return ingest.Upload{Name: name, Path: path, Origin: path}, nil
			})
		},
	}
	flags.register(cmd, false)
	return cmd
}

func (c *commandContext) execute(cmd *cobra.Command, flags *runFlags, dryRun bool, acquire func(*ingest.Ingestor) (ingest.Upload, error)) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}

	preset, err := cfg.Preset(flags.preset)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("pre-pad") {
		preset.Scheduler.PrePad = flags.prePad
	}
	if cmd.Flags().Changed("post-pad") {
		preset.Scheduler.PostPad = flags.postPad
	}
	if cmd.Flags().Changed("min-gap") {
		preset.Scheduler.MinGap = flags.minGap
	}
	local := *cfg
	if flags.workers > 0 {
		local.Pipeline.Workers = flags.workers
	}

	checks := preflight.RunAll(runCtx, &local, preset.Providers)
	if failed := preflight.Failed(checks); len(failed) > 0 {
		return fmt.Errorf("preflight: %s: %s", failed[0].Name, failed[0].Detail)
	}
	for _, check := range checks {
		if !check.Passed {
			logging.WarnWithContext(logger, "preflight check failed", "preflight",
				logging.String("check", check.Name),
				logging.String("detail", check.Detail),
				logging.String(logging.FieldImpact, "the dependent provider will report a warning"),
			)
		}
	}

	provs, err := providers.Build(&local, preset.Providers, flags.keywords, providers.Deps{Logger: logger})
	if err != nil {
		return err
	}

	upload, err := acquire(ingest.New(&local, logger))
	if err != nil {
		return err
	}

	orch := pipeline.FromConfig(&local, preset, provs, logger).
		WithDryRun(dryRun).
		WithKeepWorkDir(flags.keepWork)
	rec := pipeline.Recording{ID: uuid.NewString(), Name: upload.Name, Path: upload.Path}

	var recorder *runRecorder
	if !flags.noStore {
		store, err := history.Open(&local)
		if err != nil {
			logging.WarnWithContext(logger, "run ledger unavailable", "history",
				logging.String(logging.FieldErrorHint, "check state_dir permissions"),
				logging.String(logging.FieldImpact, "this run will not appear in history"),
				logging.Error(err),
			)
		} else {
			defer store.Close()
			recorder = startRecording(runCtx, store, history.Run{
				ID:         rec.ID,
				Recording:  rec.Name,
				SourcePath: upload.Origin,
				Preset:     preset.Name,
				StartedAt:  time.Now(),
			}, logger)
		}
	}

	res, runErr := orch.Process(runCtx, rec)
	recorder.finish(runCtx, res, runErr)
	if runErr != nil {
		return runErr
	}

	view := newResultView(res, dryRun)
	if flags.json {
		return writeJSON(cmd, view)
	}
	renderResult(cmd.OutOrStdout(), view, shouldColorize(cmd.OutOrStdout()))
	return nil
}
