package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rywkoo/highlight-clipper/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

type runSummaryView struct {
	ID         string     `json:"id"`
	Recording  string     `json:"recording"`
	Source     string     `json:"source"`
	Preset     string     `json:"preset"`
	Status     string     `json:"status"`
	Duration   float64    `json:"duration"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Windows    int        `json:"windows"`
	Clips      int        `json:"clips"`
	Warnings   int        `json:"warnings"`
}

func newRunSummaryView(run history.Run) runSummaryView {
	return runSummaryView{
		ID:         run.ID,
		Recording:  run.Recording,
		Source:     run.SourcePath,
		Preset:     run.Preset,
		Status:     string(run.Status),
		Duration:   run.Duration,
		Error:      run.Error,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Windows:    run.WindowCount,
		Clips:      run.ClipCount,
		Warnings:   run.WarningCount,
	}
}

type runDetailView struct {
	runSummaryView
	WindowRows []historyWindowView  `json:"window_rows"`
	Keywords   []historyKeywordView `json:"keywords"`
	Warnings   []historyWarningView `json:"warning_rows"`
}

type historyWindowView struct {
	Index   int     `json:"index"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Trigger float64 `json:"trigger"`
	Kinds   string  `json:"kinds"`
	Clip    string  `json:"clip,omitempty"`
}

type historyKeywordView struct {
	Keyword   string  `json:"keyword"`
	Excerpt   string  `json:"excerpt,omitempty"`
	Timestamp float64 `json:"timestamp"`
	Whole     bool    `json:"whole,omitempty"`
}

type historyWarningView struct {
	Provider string `json:"provider"`
	Message  string `json:"message"`
}

func newRunDetailView(detail *history.Detail) runDetailView {
	run := detail.Run
	run.WindowCount = len(detail.Windows)
	run.WarningCount = len(detail.Warnings)
	run.ClipCount = 0
	view := runDetailView{
		WindowRows: make([]historyWindowView, 0, len(detail.Windows)),
		Keywords:   make([]historyKeywordView, 0, len(detail.Keywords)),
		Warnings:   make([]historyWarningView, 0, len(detail.Warnings)),
	}
	for _, w := range detail.Windows {
		if w.ClipRel != "" {
			run.ClipCount++
		}
		view.WindowRows = append(view.WindowRows, historyWindowView{
			Index: w.Index, Start: w.Start, End: w.End, Trigger: w.Trigger, Kinds: w.Kinds, Clip: w.ClipRel,
		})
	}
	for _, kw := range detail.Keywords {
		view.Keywords = append(view.Keywords, historyKeywordView(kw))
	}
	for _, w := range detail.Warnings {
		view.Warnings = append(view.Warnings, historyWarningView(w))
	}
	view.runSummaryView = newRunSummaryView(run)
	return view
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					views := make([]runSummaryView, 0, len(runs))
					for _, run := range runs {
						views = append(views, newRunSummaryView(run))
					}
					return writeJSON(cmd, views)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded yet.")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						run.Recording,
						run.Preset,
						string(run.Status),
						strconv.Itoa(run.WindowCount),
						strconv.Itoa(run.ClipCount),
						strconv.Itoa(run.WarningCount),
						formatWhen(run.StartedAt),
					})
				}
				fmt.Fprintln(out, renderTable(tableSpec{
					Headers:  []string{"Run", "Recording", "Preset", "Status", "Windows", "Clips", "Warnings", "Started"},
					Rows:     rows,
					Aligns:   []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
					MaxWidth: map[int]int{2: 40},
				}))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print runs as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run with its windows, clips, keywords and warnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				id, err := resolveRunID(cmd, store, args[0])
				if err != nil {
					return err
				}
				detail, err := store.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, newRunDetailView(detail))
				}
				renderRunDetail(cmd, detail)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run as JSON")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	var resetRunning bool
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete finished runs older than a cutoff",
		Long: "Delete finished runs older than --older-than. With --reset-running, runs still marked\n" +
			"running are first marked interrupted; only use it when no highlighter run is active.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan < 0 {
				return errors.New("--older-than must not be negative")
			}
			return ctx.withHistory(func(store *history.Store) error {
				out := cmd.OutOrStdout()
				if resetRunning {
					reset, err := store.ResetInterrupted(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Marked %d stale run(s) interrupted\n", reset)
				}
				removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d run(s)\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age cutoff for finished runs")
	cmd.Flags().BoolVar(&resetRunning, "reset-running", false, "Mark runs left in running state as interrupted first")
	return cmd
}

// resolveRunID accepts a full run id or an unambiguous prefix of a recent run.
func resolveRunID(cmd *cobra.Command, store *history.Store, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.New("run id is required")
	}
	if _, err := store.Get(cmd.Context(), value); err == nil {
		return value, nil
	} else if !errors.Is(err, history.ErrNotFound) {
		return "", err
	}
	runs, err := store.List(cmd.Context(), 0)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, run := range runs {
		if strings.HasPrefix(run.ID, value) {
			matches = append(matches, run.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("run %q: %w", value, history.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("run prefix %q is ambiguous (%d matches)", value, len(matches))
	}
}

func renderRunDetail(cmd *cobra.Command, detail *history.Detail) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader("Run "+detail.ID, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Recording", statusInfo, detail.Recording, colorize))
	fmt.Fprintln(out, renderStatusLine("Source", statusInfo, detail.SourcePath, colorize))
	fmt.Fprintln(out, renderStatusLine("Preset", statusInfo, detail.Preset, colorize))
	fmt.Fprintln(out, renderStatusLine("Status", runStatusKind(detail.Status), string(detail.Status), colorize))
	fmt.Fprintln(out, renderStatusLine("Duration", statusInfo, formatTimestamp(detail.Duration), colorize))
	fmt.Fprintln(out, renderStatusLine("Started", statusInfo, formatWhen(detail.StartedAt), colorize))
	if detail.FinishedAt != nil {
		fmt.Fprintln(out, renderStatusLine("Finished", statusInfo, formatWhen(*detail.FinishedAt), colorize))
	}
	if detail.Error != "" {
		fmt.Fprintln(out, renderStatusLine("Error", statusError, detail.Error, colorize))
	}

	if len(detail.Windows) > 0 {
		rows := make([][]string, 0, len(detail.Windows))
		for _, w := range detail.Windows {
			clip := w.ClipRel
			if clip == "" {
				clip = "-"
			}
			rows = append(rows, []string{
				strconv.Itoa(w.Index),
				formatTimestamp(w.Start),
				formatTimestamp(w.End),
				formatTimestamp(w.Trigger),
				w.Kinds,
				clip,
			})
		}
		fmt.Fprintln(out, renderTable(tableSpec{
			Title:   "Windows",
			Headers: []string{"#", "Start", "End", "Trigger", "Evidence", "Clip"},
			Rows:    rows,
			Aligns:  []columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft},
		}))
	}
	if len(detail.Keywords) > 0 {
		rows := make([][]string, 0, len(detail.Keywords))
		for _, kw := range detail.Keywords {
			at := formatTimestamp(kw.Timestamp)
			if kw.Whole {
				at = "whole"
			}
			rows = append(rows, []string{kw.Keyword, at, kw.Excerpt})
		}
		fmt.Fprintln(out, renderTable(tableSpec{
			Title:    "Keywords",
			Headers:  []string{"Keyword", "At", "Excerpt"},
			Rows:     rows,
			Aligns:   []columnAlignment{alignLeft, alignRight, alignLeft},
			MaxWidth: map[int]int{3: 80},
		}))
	}
	for _, w := range detail.Warnings {
		fmt.Fprintln(out, renderStatusLine(w.Provider, statusWarn, w.Message, colorize))
	}
}

func runStatusKind(status history.Status) statusKind {
	switch status {
	case history.StatusCompleted:
		return statusOK
	case history.StatusFailed:
		return statusError
	case history.StatusInterrupted:
		return statusWarn
	default:
		return statusInfo
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
