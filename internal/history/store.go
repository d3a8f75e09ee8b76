// Package history keeps a SQLite journal of finished batch runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/aristath/imgbatch/internal/batch"
)

// Run is one journaled batch run.
type Run struct {
	ID          string
	Operation   string
	Destination string
	Total       int
	Completed   int
	Failed      int
	StartedAt   time.Time
	Duration    time.Duration
	Outcome     string // "ok", "failed" or the run-level error
	Failures    []Failure
}

// Failure is one failed input of a journaled run.
type Failure struct {
	SourcePath string
	Kind       string
	Reason     string
}

// Store defines the persistence interface for run history.
type Store interface {
	RecordRun(ctx context.Context, rep *batch.Report, runErr error) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the journal at dbPath.
// Creates parent directories if needed. Every pooled connection runs in
// WAL mode with a busy timeout and foreign keys enforced.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directories: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)", dbPath)
	return open(ctx, connStr)
}

// NewMemoryStore creates a private in-memory store for testing.
func NewMemoryStore(ctx context.Context) (*SQLiteStore, error) {
	// A unique name keeps concurrent stores apart while the shared cache
	// lets both pool connections see the same database.
	connStr := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	return open(ctx, connStr)
}

func open(ctx context.Context, connStr string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(2)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
