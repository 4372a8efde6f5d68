// Package history persists one record per build cycle in a local SQLite
// database so operators can inspect past cycles.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is the persisted record of one build cycle.
type Entry struct {
	ID       string
	Kind     string // full | micro
	Status   string // success | failed
	Commit   string
	Pages    int
	Files    int
	Duration time.Duration
	Started  time.Time
}

// Store is a SQLite-backed build history. Use ":memory:" for tests.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (and initializes) the history database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		commit_sha TEXT,
		pages INTEGER NOT NULL,
		files INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		started INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append stores one build record.
func (s *Store) Append(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (id, kind, status, commit_sha, pages, files, duration_ms, started) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.Kind, e.Status, e.Commit, e.Pages, e.Files, e.Duration.Milliseconds(), e.Started.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// Recent returns the most recent records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, kind, status, commit_sha, pages, files, duration_ms, started FROM builds ORDER BY started DESC, id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query build records: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e          Entry
			durationMS int64
			started    int64
		)
		if err := rows.Scan(&e.ID, &e.Kind, &e.Status, &e.Commit, &e.Pages, &e.Files, &durationMS, &started); err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.Started = time.Unix(started, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
