// Package store is the persistence collaborator for serialized module
// symbols: a SQLite database keyed by (target, module identity), plus
// optional human-readable JSON debug artifacts.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for serialized symbols.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the schema. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS modules (
  id              INTEGER PRIMARY KEY,
  target          TEXT NOT NULL,
  fullname        TEXT NOT NULL,
  valid_versions  TEXT NOT NULL DEFAULT '',
  UNIQUE(target, fullname)
);

-- One row per declaration variant. ordinal orders declarations within their
-- module; variant orders the variants of one declaration. An empty
-- valid_versions means unconditioned.
CREATE TABLE IF NOT EXISTS declarations (
  id              INTEGER PRIMARY KEY,
  module_id       INTEGER NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
  ordinal         INTEGER NOT NULL,
  variant         INTEGER NOT NULL DEFAULT 0,
  name            TEXT NOT NULL,
  kind            TEXT NOT NULL,
  valid_versions  TEXT NOT NULL DEFAULT '',
  detail          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_declarations_module ON declarations(module_id, ordinal, variant);

CREATE TABLE IF NOT EXISTS metadata (
  key             TEXT PRIMARY KEY,
  value           TEXT
);
`

// GetMetadata returns the value for a metadata key, or "" if absent.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get metadata %s: %w", key, err)
	}
	return value, nil
}

// SetMetadata inserts or replaces a metadata key.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec("INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("set metadata %s: %w", key, err)
	}
	return nil
}
