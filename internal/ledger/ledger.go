// Package ledger records document generations in a SQLite database.
//
// The pure-Go driver (modernc.org/sqlite) is used by default; build with
// the cgo_sqlite tag to use github.com/mattn/go-sqlite3 instead.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DefaultLimit is the number of entries Recent returns for a non-positive limit.
const DefaultLimit = 20

// ErrClosed is returned by operations on a closed ledger.
var ErrClosed = errors.New("ledger is closed")

const schema = `
CREATE TABLE IF NOT EXISTS generations (
    id          TEXT PRIMARY KEY,
    template    TEXT NOT NULL,
    output      TEXT NOT NULL,
    outcome     TEXT NOT NULL,
    delivery    TEXT NOT NULL,
    message     TEXT NOT NULL DEFAULT '',
    duration_ms INTEGER NOT NULL,
    created_at  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS generations_created_at ON generations (created_at);
`

// Entry is one recorded generation.
type Entry struct {
	ID        string        `json:"id"`
	Template  string        `json:"template"`
	Output    string        `json:"output"`
	Outcome   string        `json:"outcome"`
	Delivery  string        `json:"delivery"`
	Message   string        `json:"message,omitempty"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// Ledger is a handle on the generation history. It is safe for concurrent use.
type Ledger struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger database at path.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := openDB(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	// Single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Record stores e. A missing ID or timestamp is filled in; the stored entry
// is returned.
func (l *Ledger) Record(ctx context.Context, e Entry) (Entry, error) {
	if l.db == nil {
		return e, ErrClosed
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO generations (id, template, output, outcome, delivery, message, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Template, e.Output, e.Outcome, e.Delivery, e.Message,
		e.Duration.Milliseconds(), e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return e, fmt.Errorf("recording generation: %w", err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if l.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, template, output, outcome, delivery, message, duration_ms, created_at
		FROM generations ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying generations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			ms      int64
			created string
		)
		if err := rows.Scan(&e.ID, &e.Template, &e.Output, &e.Outcome, &e.Delivery, &e.Message, &ms, &created); err != nil {
			return nil, fmt.Errorf("scanning generation: %w", err)
		}
		e.Duration = time.Duration(ms) * time.Millisecond
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parsing timestamp of %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database.
func (l *Ledger) Close() error {
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}
