// Package journal implements a small SQLite-backed record of sync
// iterations, a diagnostic supplement to spec.md's core daemon loop.
// `xeno list --verbose` prints a session's most recent entries. No
// command in xeno calls Record (the sync daemon included), so those
// journals stay empty; `xeno doctor` does not read the journal.
// Grounded on the teacher's internal/vectordb/db.go (Open/migrate/WAL
// shape), repurposed from vector search to a small relational log.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the journal's SQLite connection.
type DB struct {
	conn *sql.DB
	path string
}

// Entry is one recorded sync iteration.
type Entry struct {
	ID         int64
	OccurredAt int64 // unix seconds
	Committed  bool
	Pushed     bool
	Pulled     bool
	Failed     bool
	Detail     string
}

// Path returns the journal database path for a given local repository
// clone root: a sibling file alongside the clone, not inside the git
// directory, so it survives `git gc` and is trivial to find.
func Path(clonePath string) string {
	return filepath.Join(filepath.Dir(clonePath), "journal.db")
}

// Open opens or creates the journal database at dbPath.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	db := &DB{conn: conn, path: dbPath}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running journal migrations: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Path() string {
	return db.path
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS iterations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			occurred_at INTEGER NOT NULL,
			committed INTEGER NOT NULL,
			pushed INTEGER NOT NULL,
			pulled INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			detail TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("creating iterations table: %w", err)
	}
	return nil
}

// Record appends one iteration entry.
func (db *DB) Record(occurredAt int64, committed, pushed, pulled, failed bool, detail string) error {
	_, err := db.conn.Exec(
		`INSERT INTO iterations (occurred_at, committed, pushed, pulled, failed, detail)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		occurredAt, committed, pushed, pulled, failed, detail,
	)
	return err
}

// Recent returns the most recent n iteration entries, newest first.
func (db *DB) Recent(n int) ([]Entry, error) {
	rows, err := db.conn.Query(
		`SELECT id, occurred_at, committed, pushed, pulled, failed, detail
		 FROM iterations ORDER BY id DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.OccurredAt, &e.Committed, &e.Pushed, &e.Pulled, &e.Failed, &e.Detail); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
