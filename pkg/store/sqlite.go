package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store keeps the graph dataset in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at dbPath, enables WAL mode and
// applies the schema.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the tables if they don't exist. Edges carry no foreign
// keys: a dataset may reference nodes it does not contain.
func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS nodes (
		seq INTEGER PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		label TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		props JSON NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS edges (
		seq INTEGER PRIMARY KEY,
		source TEXT NOT NULL,
		target TEXT NOT NULL,
		type TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source);
	CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target);

	CREATE TABLE IF NOT EXISTS dataset (
		key TEXT PRIMARY KEY,
		revision INTEGER NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create graph tables: %w", err)
	}

	return nil
}
