// Package progcache persists compiled-program metadata in a SQLite
// database, following the lib/runtime/persistence.go shape in the teacher
// repo (sql.Open, PRAGMA busy_timeout, CREATE TABLE IF NOT EXISTS) but
// using modernc.org/sqlite — the pure-Go driver actually declared in the
// teacher's own go.mod — rather than the cgo go-sqlite3 that file
// happened to import.
//
// This is purely an embedding-layer cache: it records, per program content
// hash, its byte length, when it was first and last started, and how many
// times it has run. It never changes what a program does or how it is
// decoded; no decoding or validation step is skipped on a repeat run, and
// no run identifier is stored with a row.
package progcache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Cache wraps a SQLite-backed program metadata store.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if necessary) the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("progcache: open %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("progcache: busy_timeout: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS programs (
		hash TEXT PRIMARY KEY,
		byte_length INTEGER NOT NULL,
		first_seen TEXT NOT NULL,
		last_run TEXT NOT NULL,
		run_count INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("progcache: create table: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the underlying database handle.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Hash returns the content hash progcache keys rows by.
func Hash(buf []byte) string {
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

// RecordRun upserts a row for the program identified by hash: inserting
// it with run_count=1 on first sight, or incrementing run_count and
// updating last_run on every subsequent run. runID (see internal/trace)
// is not stored here; callers correlate it with trace lines out of band.
func (c *Cache) RecordRun(hash string, byteLength int) error {
	if c == nil || c.db == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := c.db.Exec(`
		INSERT INTO programs (hash, byte_length, first_seen, last_run, run_count)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(hash) DO UPDATE SET
			last_run = excluded.last_run,
			run_count = run_count + 1
	`, hash, byteLength, now, now)
	if err != nil {
		return fmt.Errorf("progcache: record run: %w", err)
	}
	return nil
}

// RunCount returns how many times the program identified by hash has run,
// or 0 if it has never been seen.
func (c *Cache) RunCount(hash string) (int, error) {
	if c == nil || c.db == nil {
		return 0, nil
	}
	var n int
	err := c.db.QueryRow(`SELECT run_count FROM programs WHERE hash = ?`, hash).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("progcache: run count: %w", err)
	}
	return n, nil
}
