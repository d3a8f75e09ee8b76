package history

import (
	"context"
)

// initSchema creates all required tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		operation TEXT NOT NULL,
		destination TEXT NOT NULL,
		total INTEGER NOT NULL,
		completed INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		started_at TEXT NOT NULL,
		duration_ms INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	CREATE TABLE IF NOT EXISTS run_failures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		source_path TEXT NOT NULL,
		kind TEXT NOT NULL,
		reason TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_run_failures_run_id ON run_failures(run_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}
