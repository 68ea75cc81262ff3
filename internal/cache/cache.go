// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists resolved citations in a SQLite database so
// repeated lookups of the same identifier never hit the network.
package cache

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const dbFile = "citations.db"

// Cache is the persistent citation store keyed by raw identifier.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the citation database at dir/citations.db,
// creating the schema on first use.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	c := &Cache{db: db}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) createSchema() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS citations (
		identifier TEXT PRIMARY KEY,
		entry TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`)
	return err
}

// Get returns the cached entry for an identifier.
func (c *Cache) Get(identifier string) (string, bool, error) {
	var entry string
	err := c.db.QueryRow(
		`SELECT entry FROM citations WHERE identifier = ?`, identifier,
	).Scan(&entry)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading cache: %w", err)
	}
	return entry, true, nil
}

// Put stores or replaces the entry for an identifier.
func (c *Cache) Put(identifier, entry string) error {
	_, err := c.db.Exec(
		`INSERT INTO citations (identifier, entry) VALUES (?, ?)
		 ON CONFLICT(identifier) DO UPDATE SET
			entry=excluded.entry, created_at=datetime('now')`,
		identifier, entry,
	)
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// Delete removes an identifier from the cache. Deleting an absent
// identifier is not an error.
func (c *Cache) Delete(identifier string) error {
	if _, err := c.db.Exec(`DELETE FROM citations WHERE identifier = ?`, identifier); err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// Clear drops every cached citation.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec(`DELETE FROM citations`); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// Len returns the number of cached citations.
func (c *Cache) Len() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT count(*) FROM citations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cache: %w", err)
	}
	return n, nil
}

// Entry is one cached citation.
type Entry struct {
	Identifier string
	Text       string
	CreatedAt  string
}

// All returns every cached citation ordered by identifier.
func (c *Cache) All() ([]Entry, error) {
	rows, err := c.db.Query(
		`SELECT identifier, entry, created_at FROM citations ORDER BY identifier`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing cache: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Identifier, &e.Text, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning cache row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MigrateCSV imports a legacy two-column CSV cache (identifier, citation)
// into the database. A header row named "doi,citation" is recognized and
// skipped. Existing identifiers are overwritten. Returns the number of
// imported rows.
func (c *Cache) MigrateCSV(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening legacy cache: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	r.LazyQuotes = true

	imported := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("reading legacy cache: %w", err)
		}
		if imported == 0 && strings.EqualFold(row[0], "doi") {
			continue
		}
		if row[0] == "" {
			continue
		}
		if err := c.Put(row[0], row[1]); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
