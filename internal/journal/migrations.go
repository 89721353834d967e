package journal

import (
	"database/sql"
	"fmt"
)

// schemaVersion is the current journal schema version.
const schemaVersion = 1

// initializeSchema creates the journal tables, applying versioned
// migrations so future schema changes stay backward compatible.
func initializeSchema(db *sql.DB) error {
	migrationsTable := `
	CREATE TABLE IF NOT EXISTS migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		version INTEGER NOT NULL UNIQUE,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := db.Exec(migrationsTable); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	var current int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM migrations").Scan(&current); err != nil {
		return fmt.Errorf("checking migration version: %w", err)
	}

	if current < 1 {
		if err := applyMigration1(db); err != nil {
			return fmt.Errorf("applying migration 1: %w", err)
		}
	}

	return nil
}

// applyMigration1 creates the initial step_events table.
func applyMigration1(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stepEvents := `
	CREATE TABLE step_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_token TEXT NOT NULL,
		samples TEXT NOT NULL,
		kind TEXT NOT NULL,
		description TEXT NOT NULL,
		recorded_at TEXT NOT NULL
	);`
	if _, err := tx.Exec(stepEvents); err != nil {
		return fmt.Errorf("creating step_events table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX idx_step_events_session ON step_events(session_token);`,
		`CREATE INDEX idx_step_events_recorded_at ON step_events(recorded_at);`,
	}
	for _, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}

	if _, err := tx.Exec("INSERT INTO migrations (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("recording migration version: %w", err)
	}

	return tx.Commit()
}
