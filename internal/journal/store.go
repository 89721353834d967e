// Package journal persists an audit trail of undo/redo step activity.
//
// The journal is advisory: it records what was edited, undone, and redone
// per session so the history of an analysis can be reviewed later (and
// listed from the CLI). It never participates in replay.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Entry is one journaled step event.
type Entry struct {
	ID           int64     `json:"id" yaml:"id"`
	SessionToken string    `json:"sessionToken" yaml:"sessionToken"`
	Samples      string    `json:"samples" yaml:"samples"`
	Kind         string    `json:"kind" yaml:"kind"`
	Description  string    `json:"description" yaml:"description"`
	RecordedAt   time.Time `json:"recordedAt" yaml:"recordedAt"`
}

// Store is a SQLite-backed journal.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initializeSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing journal schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append writes an entry. The entry's ID is ignored; RecordedAt defaults to
// now when zero.
func (s *Store) Append(e Entry) error {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO step_events (session_token, samples, kind, description, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.SessionToken, e.Samples, e.Kind, e.Description, e.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("appending journal entry: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (s *Store) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.query(
		`SELECT id, session_token, samples, kind, description, recorded_at
		 FROM step_events ORDER BY id DESC LIMIT ?`, limit)
}

// ListBySession returns the most recent entries for one session token.
func (s *Store) ListBySession(token string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.query(
		`SELECT id, session_token, samples, kind, description, recorded_at
		 FROM step_events WHERE session_token = ? ORDER BY id DESC LIMIT ?`, token, limit)
}

// Count returns the total number of entries.
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM step_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting journal entries: %w", err)
	}
	return n, nil
}

func (s *Store) query(q string, args ...any) ([]Entry, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var e Entry
		var at string
		if err := rows.Scan(&e.ID, &e.SessionToken, &e.Samples, &e.Kind, &e.Description, &at); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		e.RecordedAt, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parsing journal timestamp %q: %w", at, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
