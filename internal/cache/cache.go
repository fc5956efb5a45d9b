// Package cache persists fetched issue records between runs in a SQLite
// database keyed by tracker namespace. Entries never expire on their own;
// invalidation is an explicit, user-triggered choice.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/plansync-dev/plansync/internal/tracker"
)

// Store is the SQLite-backed issue cache.
type Store struct {
	db *sql.DB
}

// Entry summarizes one cached namespace.
type Entry struct {
	Namespace  string
	FetchedAt  time.Time
	IssueCount int
}

const schema = `
CREATE TABLE IF NOT EXISTS issue_sets (
	namespace TEXT PRIMARY KEY,
	fetched_at DATETIME NOT NULL DEFAULT (datetime('now')),
	issue_count INTEGER NOT NULL DEFAULT 0,
	payload TEXT NOT NULL
);
`

// Open creates or opens the issue cache under dir, ensuring the directory
// and schema exist.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "issues.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", dbPath, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key returns the filesystem-safe namespace key for an owner/slug pair:
// runes outside [A-Za-z0-9._-] become underscores, owner and slug join with
// a double underscore.
func Key(owner, slug string) string {
	return fsSafe(owner) + "__" + fsSafe(slug)
}

func fsSafe(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Load returns the cached issue set for namespace. A miss reports ok=false,
// not an error.
func (s *Store) Load(namespace string) ([]tracker.Issue, bool, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM issue_sets WHERE namespace = ?`, namespace).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: load %s: %w", namespace, err)
	}

	var issues []tracker.Issue
	if err := json.Unmarshal([]byte(payload), &issues); err != nil {
		return nil, false, fmt.Errorf("cache: decode %s: %w", namespace, err)
	}
	return issues, true, nil
}

// Store upserts the issue set for namespace, stamping the fetch time.
func (s *Store) Store(namespace string, issues []tracker.Issue) error {
	payload, err := json.Marshal(issues)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", namespace, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO issue_sets (namespace, fetched_at, issue_count, payload)
		VALUES (?, datetime('now'), ?, ?)
		ON CONFLICT(namespace) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			issue_count = excluded.issue_count,
			payload = excluded.payload
	`, namespace, len(issues), string(payload))
	if err != nil {
		return fmt.Errorf("cache: store %s: %w", namespace, err)
	}
	return nil
}

// Entries lists every cached namespace, oldest fetch first.
func (s *Store) Entries() ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT namespace, fetched_at, issue_count
		FROM issue_sets
		ORDER BY fetched_at, namespace
	`)
	if err != nil {
		return nil, fmt.Errorf("cache: list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var fetchedAt string
		if err := rows.Scan(&e.Namespace, &fetchedAt, &e.IssueCount); err != nil {
			return nil, fmt.Errorf("cache: scan entry: %w", err)
		}
		if t, err := time.Parse("2006-01-02 15:04:05", fetchedAt); err == nil {
			e.FetchedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes the named namespaces and returns how many rows went away.
func (s *Store) Clear(namespaces []string) (int, error) {
	removed := 0
	for _, namespace := range namespaces {
		res, err := s.db.Exec(`DELETE FROM issue_sets WHERE namespace = ?`, namespace)
		if err != nil {
			return removed, fmt.Errorf("cache: clear %s: %w", namespace, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			removed += int(n)
		}
	}
	return removed, nil
}

// ClearAll empties the cache and returns how many rows went away.
func (s *Store) ClearAll() (int, error) {
	res, err := s.db.Exec(`DELETE FROM issue_sets`)
	if err != nil {
		return 0, fmt.Errorf("cache: clear all: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
