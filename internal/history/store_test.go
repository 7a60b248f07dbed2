package history_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rywkoo/highlight-clipper/internal/history"
	"github.com/rywkoo/highlight-clipper/internal/testsupport"
)

func TestStartFinishGetRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	if err := store.Start(ctx, history.Run{ID: "run-1", Recording: "match", SourcePath: "/tmp/match.mp4", Preset: "balanced"}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	out := history.Outcome{
		Duration: 100,
		Windows: []history.Window{
			{Index: 0, Start: 0, End: 20, Trigger: 5, Kinds: "loudness", ClipPath: "/clips/match/clip_0.mp4", ClipRel: "match/clip_0.mp4"},
			{Index: 1, Start: 40, End: 60, Trigger: 40, Kinds: "loudness+keyword"},
		},
		Keywords: []history.Keyword{
			{Keyword: "goal", Excerpt: "what a goal", Timestamp: 41.5},
			{Keyword: "save", Whole: true},
		},
		Warnings: []history.Warning{{Provider: "emotion", Message: "service unavailable"}},
	}
	if err := store.Finish(ctx, "run-1", out); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	detail, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if detail.Status != history.StatusCompleted || detail.Duration != 100 || detail.Preset != "balanced" {
		t.Fatalf("unexpected run %#v", detail.Run)
	}
	if detail.FinishedAt == nil {
		t.Fatal("expected finished_at to be set")
	}
	if len(detail.Windows) != 2 || detail.Windows[1].Kinds != "loudness+keyword" || detail.Windows[1].ClipPath != "" {
		t.Fatalf("unexpected windows %#v", detail.Windows)
	}
	if detail.ClipCount != 1 || detail.WindowCount != 2 || detail.WarningCount != 1 {
		t.Fatalf("unexpected counts %d/%d/%d", detail.WindowCount, detail.ClipCount, detail.WarningCount)
	}
	if len(detail.Keywords) != 2 || detail.Keywords[0].Timestamp != 41.5 || !detail.Keywords[1].Whole {
		t.Fatalf("unexpected keywords %#v", detail.Keywords)
	}
	if detail.Warnings[0].Provider != "emotion" {
		t.Fatalf("unexpected warnings %#v", detail.Warnings)
	}
}

func TestGetMissingRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Finish(context.Background(), "nope", history.Outcome{}); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Finish, got %v", err)
	}
}

func TestStartRequiresID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	if err := store.Start(context.Background(), history.Run{Recording: "x"}); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestListNewestFirstWithCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := store.Start(ctx, history.Run{ID: id, Recording: id, SourcePath: id, StartedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("Start %s: %v", id, err)
		}
	}
	if err := store.Finish(ctx, "mid", history.Outcome{Windows: []history.Window{{Index: 0, End: 1, Kinds: "laughter", ClipPath: "a"}}}); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "new" || runs[1].ID != "mid" {
		t.Fatalf("unexpected order %#v", runs)
	}
	if runs[1].WindowCount != 1 || runs[1].ClipCount != 1 {
		t.Fatalf("unexpected counts %#v", runs[1])
	}
	if runs[0].Status != history.StatusRunning {
		t.Fatalf("expected running status, got %s", runs[0].Status)
	}

	all, err := store.List(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d (%v)", len(all), err)
	}
}

func TestResetInterruptedAndPrune(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	if err := store.Start(ctx, history.Run{ID: "stuck", Recording: "a", SourcePath: "a", StartedAt: old}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := store.Start(ctx, history.Run{ID: "fresh", Recording: "b", SourcePath: "b"}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := store.Finish(ctx, "fresh", history.Outcome{Status: history.StatusFailed, Error: "probe failed"}); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	n, err := store.ResetInterrupted(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 interrupted run, got %d (%v)", n, err)
	}
	detail, err := store.Get(ctx, "stuck")
	if err != nil || detail.Status != history.StatusInterrupted {
		t.Fatalf("expected interrupted run, got %#v (%v)", detail, err)
	}

	pruned, err := store.Prune(ctx, time.Now().Add(-24*time.Hour))
	if err != nil || pruned != 1 {
		t.Fatalf("expected 1 pruned run, got %d (%v)", pruned, err)
	}
	if _, err := store.Get(ctx, "stuck"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected pruned run to be gone, got %v", err)
	}
	failed, err := store.Get(ctx, "fresh")
	if err != nil || failed.Status != history.StatusFailed || failed.Error != "probe failed" {
		t.Fatalf("unexpected failed run %#v (%v)", failed, err)
	}
}

func TestReopenKeepsSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Start(context.Background(), history.Run{ID: "keep", Recording: "r", SourcePath: "p"}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	store.Close()

	reopened := testsupport.MustOpenHistory(t, cfg)
	if _, err := reopened.Get(context.Background(), "keep"); err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
}
