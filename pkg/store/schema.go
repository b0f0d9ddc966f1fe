//go:build !wasm

package store

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// CreateSchema creates the database schema if it doesn't exist.
func CreateSchema(db *sql.DB) error {
	if err := createSchemaVersionTable(db); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	steps := []struct {
		name string
		fn   func(*sql.DB) error
	}{
		{"blobs", createBlobsTable},
		{"matches", createMatchesTable},
		{"findings", createFindingsTable},
		{"provenance", createProvenanceTable},
	}
	for _, step := range steps {
		if err := step.fn(db); err != nil {
			return fmt.Errorf("creating %s table: %w", step.name, err)
		}
	}

	return nil
}

func createSchemaVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count)
	if err != nil {
		return err
	}

	if count == 0 {
		_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion)
		return err
	}

	var version int
	if err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return err
	}
	if version != SchemaVersion {
		return fmt.Errorf("unsupported schema version %d (want %d)", version, SchemaVersion)
	}
	return nil
}

func createBlobsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS blobs (
			id TEXT PRIMARY KEY NOT NULL,
			size INTEGER NOT NULL
		)
	`)
	return err
}

func createMatchesTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			blob_id TEXT NOT NULL REFERENCES blobs(id),
			structural_id TEXT NOT NULL UNIQUE,
			finding_id TEXT NOT NULL,
			url TEXT NOT NULL,
			scheme TEXT NOT NULL,
			host TEXT NOT NULL,
			offset_start INTEGER NOT NULL,
			offset_end INTEGER NOT NULL,
			start_line INTEGER,
			start_column INTEGER,
			end_line INTEGER,
			end_column INTEGER,
			snippet_before BLOB,
			snippet_matching BLOB,
			snippet_after BLOB
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_matches_finding_id ON matches(finding_id)
	`)
	return err
}

func createFindingsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS findings (
			id TEXT PRIMARY KEY NOT NULL,
			url TEXT NOT NULL,
			host TEXT NOT NULL
		)
	`)
	return err
}

func createProvenanceTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS provenance (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			blob_id TEXT NOT NULL REFERENCES blobs(id),
			type TEXT NOT NULL,
			path TEXT NOT NULL DEFAULT '',
			repo_path TEXT NOT NULL DEFAULT '',
			commit_hash TEXT NOT NULL DEFAULT '',
			member_path TEXT NOT NULL DEFAULT '',
			UNIQUE(blob_id, type, path, repo_path, commit_hash, member_path)
		)
	`)
	if err != nil {
		return err
	}

	// Create index for efficient provenance lookup by blob_id
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_provenance_blob_id ON provenance(blob_id)
	`)
	return err
}
