// Package sqlite persists the audit trail in a SQLite database, as an
// alternative (or addition) to the flat audit file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at DATETIME NOT NULL,
	event      TEXT NOT NULL
);
`

// Event is one persisted audit record.
type Event struct {
	ID        int64
	CreatedAt time.Time
	Event     string
}

// Store implements audit.Sink on a SQLite database.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and ensures the schema.
// Pass ":memory:" for an ephemeral store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &Store{db: db}, nil
}

// Record inserts one event row.
func (s *Store) Record(event string) error {
	_, err := s.db.Exec(
		`INSERT INTO events (created_at, event) VALUES (?, ?)`,
		time.Now().UTC(), event,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Events returns up to limit records in insertion order.
func (s *Store) Events(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, event FROM events ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.CreatedAt, &ev.Event); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
