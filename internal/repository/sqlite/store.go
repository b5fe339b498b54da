// Package sqlite provides a single-file dev-mode store implementing the
// same repository contracts as the postgres package.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store wraps the sqlite database handle
type Store struct {
	db *sql.DB
}

// NewStore opens (and initializes) the sqlite database at path
func NewStore(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database file path is required")
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS intake_sessions (
			session_id    TEXT NOT NULL,
			firm_id       TEXT NOT NULL,
			phase         TEXT NOT NULL,
			is_deleted    INTEGER NOT NULL DEFAULT 0,
			created_at    TEXT NOT NULL,
			last_activity TEXT NOT NULL,
			state         TEXT NOT NULL,
			PRIMARY KEY (firm_id, session_id)
		);
		CREATE INDEX IF NOT EXISTS idx_intake_sessions_firm_activity
			ON intake_sessions (firm_id, last_activity DESC);
		CREATE TABLE IF NOT EXISTS conflict_parties (
			id         TEXT PRIMARY KEY,
			firm_id    TEXT NOT NULL,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL DEFAULT '',
			phone      TEXT NOT NULL DEFAULT '',
			aliases    TEXT NOT NULL DEFAULT '[]',
			role       TEXT NOT NULL,
			matter_ref TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_conflict_parties_firm
			ON conflict_parties (firm_id);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}
	return nil
}

// Close closes the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
