// Package history provides a persistent SQLite-backed log of delivery
// attempts. It uses modernc.org/sqlite (pure Go, no CGO) with WAL mode and a
// single connection.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/notigate/notigate/internal/notify"

	_ "modernc.org/sqlite" // SQLite driver registration
)

const defaultBusyTimeout = 5000 // milliseconds

// Compile-time interface guard.
var _ notify.Recorder = (*Store)(nil)

// Store is an append-only delivery log.
type Store struct {
	db *sql.DB
}

// Open opens (and if necessary creates) the delivery log database at path.
// The database uses WAL mode, a 5 s busy timeout, and a single connection
// (SQLite serialises writes). The schema is migrated automatically.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("history: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", defaultBusyTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: set busy_timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS delivery_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	at          INTEGER NOT NULL,
	rule        TEXT    NOT NULL,
	notifier    TEXT    NOT NULL,
	ok          INTEGER NOT NULL,
	error       TEXT    NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS delivery_log_at ON delivery_log(at);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("history: migrate schema: %w", err)
	}
	return nil
}

// Record implements notify.Recorder.
func (s *Store) Record(ctx context.Context, a notify.Attempt) error {
	ok := 0
	if a.OK {
		ok = 1
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO delivery_log (at, rule, notifier, ok, error, duration_ms)
VALUES (?, ?, ?, ?, ?, ?)`,
		a.Time.UnixMilli(), a.Rule, a.Notifier, ok, a.Error, a.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("history: insert attempt: %w", err)
	}
	return nil
}

// Recent returns up to limit attempts, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]notify.Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT at, rule, notifier, ok, error, duration_ms
FROM delivery_log
ORDER BY at DESC, id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query attempts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []notify.Attempt
	for rows.Next() {
		var (
			at, durationMs int64
			ok             int
			a              notify.Attempt
		)
		if err := rows.Scan(&at, &a.Rule, &a.Notifier, &ok, &a.Error, &durationMs); err != nil {
			return nil, fmt.Errorf("history: scan attempt: %w", err)
		}
		a.Time = time.UnixMilli(at)
		a.OK = ok == 1
		a.Duration = time.Duration(durationMs) * time.Millisecond
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate attempts: %w", err)
	}
	return result, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
