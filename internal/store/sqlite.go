package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements the DB interface using SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations
func (s *SQLiteDB) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS executions (
			id TEXT PRIMARY KEY,
			window_id INTEGER NOT NULL,
			winner TEXT NOT NULL DEFAULT '',
			total_votes INTEGER NOT NULL DEFAULT 0,
			tallies_json TEXT NOT NULL DEFAULT '[]',
			executed_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_executions_executed_at ON executions(executed_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_executions_window_id ON executions(window_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// SaveExecution saves a resolved window to the database
func (s *SQLiteDB) SaveExecution(exec *Execution) error {
	if exec.ID == "" {
		exec.ID = uuid.New().String()
	}
	if exec.TalliesJSON == "" {
		exec.TalliesJSON = "[]"
	}

	query := `INSERT INTO executions (id, window_id, winner, total_votes, tallies_json, executed_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		exec.ID, exec.WindowID, exec.Winner, exec.TotalVotes,
		exec.TalliesJSON, exec.ExecutedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save execution: %w", err)
	}
	return nil
}

// maxListLimit bounds any single listing query; the API layer rejects
// larger requests before they get here.
const maxListLimit = 500

// ListExecutions returns the most recent executions, newest first. A
// non-positive limit falls back to 50; anything above maxListLimit is
// clamped to it.
func (s *SQLiteDB) ListExecutions(limit int) ([]Execution, error) {
	if limit <= 0 {
		limit = 50
	} else if limit > maxListLimit {
		limit = maxListLimit
	}

	query := `SELECT id, window_id, winner, total_votes, tallies_json, executed_at
		FROM executions ORDER BY executed_at DESC LIMIT ?`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	defer rows.Close()

	execs := []Execution{}
	for rows.Next() {
		exec, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		execs = append(execs, *exec)
	}
	return execs, rows.Err()
}

// LatestExecution returns the most recent execution, or nil if none exist
func (s *SQLiteDB) LatestExecution() (*Execution, error) {
	query := `SELECT id, window_id, winner, total_votes, tallies_json, executed_at
		FROM executions ORDER BY executed_at DESC LIMIT 1`

	exec, err := scanExecution(s.db.QueryRow(query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return exec, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExecution(row rowScanner) (*Execution, error) {
	var exec Execution
	var executedAt string
	if err := row.Scan(&exec.ID, &exec.WindowID, &exec.Winner,
		&exec.TotalVotes, &exec.TalliesJSON, &executedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan execution: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, executedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse executed_at %q: %w", executedAt, err)
	}
	exec.ExecutedAt = ts
	return &exec, nil
}
