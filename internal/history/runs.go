package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a run id has no ledger row.
var ErrNotFound = errors.New("run not found")

const runColumns = "run_id, recording, source_path, preset, status, duration, error_message, started_at, finished_at"

// Start records a new running run.
func (s *Store) Start(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("history: run id is required")
	}
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (run_id, recording, source_path, preset, status, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Recording, run.SourcePath, nullableString(run.Preset), StatusRunning, formatTime(started),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Finish stores the outcome of a run and its child rows in one transaction.
func (s *Store) Finish(ctx context.Context, runID string, out Outcome) error {
	ctx = ensureContext(ctx)
	if out.Status == "" {
		out.Status = StatusCompleted
	}
	return retryOnBusy(ctx, func() error {
		return s.finishTx(ctx, runID, out)
	})
}

func (s *Store) finishTx(ctx context.Context, runID string, out Outcome) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin finish tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE runs SET status = ?, duration = ?, error_message = ?, finished_at = ? WHERE run_id = ?`,
		out.Status, out.Duration, nullableString(out.Error), formatTime(time.Now()), runID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, runID)
	}

	for _, w := range out.Windows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO windows (run_id, idx, start_sec, end_sec, trigger_sec, kinds, clip_path, clip_rel)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, w.Index, w.Start, w.End, w.Trigger, w.Kinds, nullableString(w.ClipPath), nullableString(w.ClipRel),
		); err != nil {
			return fmt.Errorf("insert window %d: %w", w.Index, err)
		}
	}
	for _, k := range out.Keywords {
		var ts any = k.Timestamp
		if k.Whole {
			ts = nil
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO keywords (run_id, keyword, excerpt, timestamp, whole) VALUES (?, ?, ?, ?, ?)`,
			runID, k.Keyword, nullableString(k.Excerpt), ts, boolToInt(k.Whole),
		); err != nil {
			return fmt.Errorf("insert keyword %q: %w", k.Keyword, err)
		}
	}
	for _, w := range out.Warnings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO warnings (run_id, provider, message) VALUES (?, ?, ?)`,
			runID, w.Provider, w.Message,
		); err != nil {
			return fmt.Errorf("insert warning: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit finish: %w", err)
	}
	return nil
}

// Get loads one run with its windows, keywords and warnings.
func (s *Store) Get(ctx context.Context, runID string) (*Detail, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	detail := &Detail{Run: *run}

	if detail.Windows, err = s.windows(ctx, runID); err != nil {
		return nil, err
	}
	if detail.Keywords, err = s.keywords(ctx, runID); err != nil {
		return nil, err
	}
	if detail.Warnings, err = s.warnings(ctx, runID); err != nil {
		return nil, err
	}
	detail.WindowCount = len(detail.Windows)
	detail.WarningCount = len(detail.Warnings)
	for _, w := range detail.Windows {
		if w.ClipPath != "" {
			detail.ClipCount++
		}
	}
	return detail, nil
}

// List returns the most recent runs first. limit <= 0 returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + `,
        (SELECT COUNT(1) FROM windows w WHERE w.run_id = runs.run_id),
        (SELECT COUNT(1) FROM windows w WHERE w.run_id = runs.run_id AND w.clip_path IS NOT NULL),
        (SELECT COUNT(1) FROM warnings x WHERE x.run_id = runs.run_id)
        FROM runs ORDER BY started_at DESC, run_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRunWithCounts(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// ResetInterrupted marks runs left running by a dead process as interrupted.
func (s *Store) ResetInterrupted(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE status = ?`,
		StatusInterrupted, formatTime(time.Now()), StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("reset interrupted runs: %w", err)
	}
	return res.RowsAffected()
}

// Prune deletes finished runs that started before cutoff.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`DELETE FROM runs WHERE status != ? AND started_at < ?`,
		StatusRunning, formatTime(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) windows(ctx context.Context, runID string) ([]Window, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, start_sec, end_sec, trigger_sec, kinds, clip_path, clip_rel FROM windows WHERE run_id = ? ORDER BY idx`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query windows: %w", err)
	}
	defer rows.Close()
	var out []Window
	for rows.Next() {
		var (
			w         Window
			path, rel sql.NullString
		)
		if err := rows.Scan(&w.Index, &w.Start, &w.End, &w.Trigger, &w.Kinds, &path, &rel); err != nil {
			return nil, fmt.Errorf("scan window: %w", err)
		}
		w.ClipPath = path.String
		w.ClipRel = rel.String
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) keywords(ctx context.Context, runID string) ([]Keyword, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT keyword, excerpt, timestamp, whole FROM keywords WHERE run_id = ? ORDER BY rowid`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query keywords: %w", err)
	}
	defer rows.Close()
	var out []Keyword
	for rows.Next() {
		var (
			k       Keyword
			excerpt sql.NullString
			ts      sql.NullFloat64
			whole   int
		)
		if err := rows.Scan(&k.Keyword, &excerpt, &ts, &whole); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		k.Excerpt = excerpt.String
		k.Timestamp = ts.Float64
		k.Whole = whole != 0
		out = append(out, k)
	}
	return out, rows.Err()
}

func (s *Store) warnings(ctx context.Context, runID string) ([]Warning, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT provider, message FROM warnings WHERE run_id = ? ORDER BY rowid`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query warnings: %w", err)
	}
	defer rows.Close()
	var out []Warning
	for rows.Next() {
		var w Warning
		if err := rows.Scan(&w.Provider, &w.Message); err != nil {
			return nil, fmt.Errorf("scan warning: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

type scanner interface{ Scan(dest ...any) error }

func scanRun(row scanner) (*Run, error) {
	return scanRunInto(row)
}

func scanRunWithCounts(row scanner) (*Run, error) {
	var windows, clips, warnings int
	run, err := scanRunInto(row, &windows, &clips, &warnings)
	if err != nil {
		return nil, err
	}
	run.WindowCount = windows
	run.ClipCount = clips
	run.WarningCount = warnings
	return run, nil
}

func scanRunInto(row scanner, extra ...any) (*Run, error) {
	var (
		run         Run
		preset      sql.NullString
		status      string
		errMsg      sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	dest := []any{&run.ID, &run.Recording, &run.SourcePath, &preset, &status, &run.Duration, &errMsg, &startedRaw, &finishedRaw}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	run.Preset = preset.String
	run.Status = Status(status)
	run.Error = errMsg.String
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return &run, nil
}
