package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rywkoo/highlight-clipper/internal/pipeline"
	"github.com/rywkoo/highlight-clipper/internal/textutil"
)

// resultView is the --json shape of a run.
type resultView struct {
	RunID     string                       `json:"run_id"`
	Recording string                       `json:"recording"`
	Source    string                       `json:"source"`
	Preset    string                       `json:"preset"`
	Duration  float64                      `json:"duration"`
	DryRun    bool                         `json:"dry_run,omitempty"`
	Windows   []windowView                 `json:"windows"`
	Keywords  []pipeline.KeywordAnnotation `json:"keywords"`
	Warnings  []pipeline.Warning           `json:"warnings"`
	Providers []providerView               `json:"providers"`
}

type windowView struct {
	Index   int      `json:"index"`
	Start   float64  `json:"start"`
	End     float64  `json:"end"`
	Trigger float64  `json:"trigger"`
	Kinds   []string `json:"kinds"`
	Clip    string   `json:"clip,omitempty"`
	Size    int64    `json:"size,omitempty"`
}

type providerView struct {
	Kind      string  `json:"kind"`
	Events    int     `json:"events"`
	ElapsedMS int64   `json:"elapsed_ms"`
	Error     *string `json:"error,omitempty"`
}

func newResultView(res pipeline.Result, dryRun bool) resultView {
	view := resultView{
		RunID:     res.RunID,
		Recording: res.Recording.Name,
		Source:    res.Recording.Path,
		Preset:    res.Preset,
		Duration:  res.Duration,
		DryRun:    dryRun,
		Windows:   make([]windowView, 0, len(res.Windows)),
		Keywords:  append([]pipeline.KeywordAnnotation{}, res.Keywords...),
		Warnings:  append([]pipeline.Warning{}, res.Warnings...),
		Providers: make([]providerView, 0, len(res.Providers)),
	}
	clips := make(map[int]pipeline.Clip, len(res.Clips))
	for _, clip := range res.Clips {
		clips[clip.Index] = clip
	}
	for i, w := range res.Windows {
		wv := windowView{Index: i, Start: w.Start, End: w.End, Trigger: w.Trigger, Kinds: []string{}}
		for _, kind := range w.Kinds.Kinds() {
			wv.Kinds = append(wv.Kinds, kind.String())
		}
		if clip, ok := clips[i]; ok {
			wv.Clip = clip.Rel
			wv.Size = clip.Size
		}
		view.Windows = append(view.Windows, wv)
	}
	for _, p := range res.Providers {
		pv := providerView{Kind: p.Kind.String(), Events: p.Events, ElapsedMS: p.Elapsed.Milliseconds()}
		if p.Err != nil {
			msg := p.Err.Error()
			pv.Error = &msg
		}
		view.Providers = append(view.Providers, pv)
	}
	return view
}

func renderResult(out io.Writer, view resultView, colorize bool) {
	title := textutil.DisplayTitle(view.Recording)
	if title == "" {
		title = view.Recording
	}
	fmt.Fprintf(out, "%s  (run %s, preset %s, %s)\n", title, view.RunID, view.Preset, formatTimestamp(view.Duration))

	if len(view.Windows) == 0 {
		fmt.Fprintln(out, "No highlight windows found.")
	} else {
		rows := make([][]string, 0, len(view.Windows))
		for _, w := range view.Windows {
			clip := "-"
			switch {
			case w.Clip != "":
				clip = fmt.Sprintf("%s (%s)", w.Clip, formatBytes(w.Size))
			case view.DryRun:
				clip = "(plan)"
			}
			rows = append(rows, []string{
				strconv.Itoa(w.Index),
				formatTimestamp(w.Start),
				formatTimestamp(w.End),
				formatTimestamp(w.Trigger),
				strings.Join(w.Kinds, "+"),
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

	if len(view.Keywords) > 0 {
		rows := make([][]string, 0, len(view.Keywords))
		for _, kw := range view.Keywords {
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

	if len(view.Warnings) > 0 {
		for _, line := range renderSectionHeader("Warnings", colorize) {
			fmt.Fprintln(out, line)
		}
		for _, w := range view.Warnings {
			fmt.Fprintln(out, renderStatusLine(w.Source, statusWarn, w.Kind+": "+w.Message, colorize))
		}
	}
}
