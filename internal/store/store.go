// Package store persists tracked positions per document path, so a
// reopened document restores the selections the user had when it closed.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaVersion = 1

// Store is a sqlite-backed position store. Offsets are persisted as saved;
// callers re-normalize them against the freshly opened text, since the file
// may have changed on disk in between.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and migrates its schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set PRAGMA: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if version == schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS positions (
        path TEXT NOT NULL,
        offset INTEGER NOT NULL,
        PRIMARY KEY (path, offset)
    )`); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}

	return tx.Commit()
}

// Save replaces the stored offsets for path with offsets. An empty slice
// just forgets the document.
func (s *Store) Save(path string, offsets []int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM positions WHERE path = ?", path); err != nil {
		return fmt.Errorf("failed to clear positions: %w", err)
	}
	for _, off := range offsets {
		if _, err := tx.Exec(
			"INSERT INTO positions (path, offset) VALUES (?, ?)", path, off,
		); err != nil {
			return fmt.Errorf("failed to insert position: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Load returns the stored offsets for path in ascending order, or nil.
func (s *Store) Load(path string) ([]int, error) {
	rows, err := s.db.Query(
		"SELECT offset FROM positions WHERE path = ? ORDER BY offset", path,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var offsets []int
	for rows.Next() {
		var off int
		if err := rows.Scan(&off); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		offsets = append(offsets, off)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}
	return offsets, nil
}

// Forget drops the stored offsets for path.
func (s *Store) Forget(path string) error {
	if _, err := s.db.Exec("DELETE FROM positions WHERE path = ?", path); err != nil {
		return fmt.Errorf("failed to delete positions: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
