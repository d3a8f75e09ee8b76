package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/imgbatch/internal/batch"
)

// ErrRunNotFound is returned by GetRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// timeLayout has a fixed width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Outcome labels a report for the journal.
func Outcome(rep *batch.Report, runErr error) string {
	switch {
	case runErr != nil:
		return firstLine(runErr.Error())
	case rep.HasFailures():
		return "failed"
	default:
		return "ok"
	}
}

// RecordRun journals a finished run and its failures in one transaction.
// Recording the same run twice replaces the earlier entry.
func (s *SQLiteStore) RecordRun(ctx context.Context, rep *batch.Report, runErr error) error {
	if rep == nil || rep.RunID == "" {
		return fmt.Errorf("record run: report has no run ID")
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, rep.RunID); err != nil {
		return fmt.Errorf("failed to replace run %s: %w", rep.RunID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, operation, destination, total, completed, failed, outcome, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rep.RunID, rep.Operation, rep.Destination, rep.Total, len(rep.Completed), len(rep.Failed),
		Outcome(rep, runErr), rep.StartedAt.UTC().Format(timeLayout), rep.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, f := range rep.Failed {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_failures (run_id, source_path, kind, reason)
			VALUES (?, ?, ?, ?)
		`, rep.RunID, f.SourcePath, f.Kind.String(), f.Reason)
		if err != nil {
			return fmt.Errorf("failed to insert failure for %s: %w", f.SourcePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRun loads one run with its failures.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, operation, destination, total, completed, failed, outcome, started_at, duration_ms
		FROM runs WHERE id = ?
	`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source_path, kind, reason FROM run_failures
		WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query failures: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.SourcePath, &f.Kind, &f.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		run.Failures = append(run.Failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating failures: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first, without failures.
// A limit of 0 or less returns every run.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, operation, destination, total, completed, failed, outcome, started_at, duration_ms
		FROM runs ORDER BY started_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run        Run
		startedAt  string
		durationMS int64
	)
	err := sc.Scan(&run.ID, &run.Operation, &run.Destination, &run.Total, &run.Completed, &run.Failed,
		&run.Outcome, &startedAt, &durationMS)
	if err != nil {
		return nil, err
	}
	run.StartedAt, err = time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("bad started_at %q: %w", startedAt, err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
