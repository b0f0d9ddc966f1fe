//go:build !wasm

package store

import (
	"database/sql"
	"fmt"

	"github.com/praetorian-inc/urlspan/pkg/types"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-based store.
// Use ":memory:" for in-memory database (useful for testing).
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps ":memory:" databases and writers consistent.
	db.SetMaxOpenConns(1)

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// AddBlob stores a blob record.
func (s *SQLiteStore) AddBlob(id types.BlobID, size int64) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO blobs (id, size) VALUES (?, ?)", id.Hex(), size)
	if err != nil {
		return fmt.Errorf("inserting blob: %w", err)
	}
	return nil
}

// AddMatch stores a match record.
func (s *SQLiteStore) AddMatch(m *types.Match) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO matches (
			blob_id, structural_id, finding_id, url, scheme, host,
			offset_start, offset_end, start_line, start_column, end_line, end_column,
			snippet_before, snippet_matching, snippet_after
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.BlobID.Hex(),
		m.StructuralID,
		m.FindingID,
		m.URL,
		m.Scheme,
		m.Host,
		m.Location.Offset.Start,
		m.Location.Offset.End,
		m.Location.Source.Start.Line,
		m.Location.Source.Start.Column,
		m.Location.Source.End.Line,
		m.Location.Source.End.Column,
		m.Snippet.Before,
		m.Snippet.Matching,
		m.Snippet.After,
	)
	if err != nil {
		return fmt.Errorf("inserting match: %w", err)
	}
	return nil
}

// AddFinding stores a finding (deduplicated).
func (s *SQLiteStore) AddFinding(f *types.Finding) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO findings (id, url, host)
		VALUES (?, ?, ?)
	`, f.ID, f.URL, f.Host)
	if err != nil {
		return fmt.Errorf("inserting finding: %w", err)
	}
	return nil
}

// AddProvenance associates provenance with a blob.
func (s *SQLiteStore) AddProvenance(blobID types.BlobID, prov types.Provenance) error {
	row, err := toProvenanceRow(prov)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT OR IGNORE INTO provenance (blob_id, type, path, repo_path, commit_hash, member_path)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		blobID.Hex(),
		row.kind,
		row.path,
		row.repoPath,
		row.commitHash,
		row.member,
	)
	if err != nil {
		return fmt.Errorf("inserting provenance: %w", err)
	}
	return nil
}

// GetProvenance retrieves the first provenance recorded for a blob.
func (s *SQLiteStore) GetProvenance(blobID types.BlobID) (types.Provenance, error) {
	provs, err := s.GetAllProvenance(blobID)
	if err != nil {
		return nil, err
	}
	if len(provs) == 0 {
		return nil, fmt.Errorf("no provenance found for blob %s", blobID.Hex())
	}
	return provs[0], nil
}

// GetAllProvenance retrieves all provenance records for a blob.
func (s *SQLiteStore) GetAllProvenance(blobID types.BlobID) ([]types.Provenance, error) {
	rows, err := s.db.Query(`
		SELECT type, path, repo_path, commit_hash, member_path
		FROM provenance
		WHERE blob_id = ?
		ORDER BY id
	`, blobID.Hex())
	if err != nil {
		return nil, fmt.Errorf("querying provenance: %w", err)
	}
	defer rows.Close()

	provs := make([]types.Provenance, 0)
	for rows.Next() {
		var row provenanceRow
		if err := rows.Scan(&row.kind, &row.path, &row.repoPath, &row.commitHash, &row.member); err != nil {
			return nil, fmt.Errorf("scanning provenance: %w", err)
		}
		prov, err := row.provenance()
		if err != nil {
			return nil, err
		}
		provs = append(provs, prov)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating provenance: %w", err)
	}
	return provs, nil
}

const matchColumns = `
	blob_id, structural_id, finding_id, url, scheme, host,
	offset_start, offset_end, start_line, start_column, end_line, end_column,
	snippet_before, snippet_matching, snippet_after
`

// GetMatches retrieves matches for a blob.
func (s *SQLiteStore) GetMatches(blobID types.BlobID) ([]*types.Match, error) {
	return s.queryMatches(`SELECT `+matchColumns+` FROM matches WHERE blob_id = ? ORDER BY id`, blobID.Hex())
}

// GetMatchesByFinding retrieves every match sharing a finding ID.
func (s *SQLiteStore) GetMatchesByFinding(findingID string) ([]*types.Match, error) {
	return s.queryMatches(`SELECT `+matchColumns+` FROM matches WHERE finding_id = ? ORDER BY id`, findingID)
}

// GetAllMatches retrieves all matches (for JSON export).
func (s *SQLiteStore) GetAllMatches() ([]*types.Match, error) {
	return s.queryMatches(`SELECT ` + matchColumns + ` FROM matches ORDER BY id`)
}

func (s *SQLiteStore) queryMatches(query string, args ...any) ([]*types.Match, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*types.Match, 0)
	for rows.Next() {
		var m types.Match
		var blobIDHex string
		var startLine, startCol, endLine, endCol sql.NullInt64

		err := rows.Scan(
			&blobIDHex,
			&m.StructuralID,
			&m.FindingID,
			&m.URL,
			&m.Scheme,
			&m.Host,
			&m.Location.Offset.Start,
			&m.Location.Offset.End,
			&startLine,
			&startCol,
			&endLine,
			&endCol,
			&m.Snippet.Before,
			&m.Snippet.Matching,
			&m.Snippet.After,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}

		blobID, err := types.ParseBlobID(blobIDHex)
		if err != nil {
			return nil, fmt.Errorf("parsing blob ID: %w", err)
		}
		m.BlobID = blobID

		m.Location.Source.Start.Line = int(startLine.Int64)
		m.Location.Source.Start.Column = int(startCol.Int64)
		m.Location.Source.End.Line = int(endLine.Int64)
		m.Location.Source.End.Column = int(endCol.Int64)

		matches = append(matches, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}
	return matches, nil
}

// GetFindings retrieves all findings (for reporting).
func (s *SQLiteStore) GetFindings() ([]*types.Finding, error) {
	rows, err := s.db.Query(`
		SELECT id, url, host
		FROM findings
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying findings: %w", err)
	}
	defer rows.Close()

	findings := make([]*types.Finding, 0)
	for rows.Next() {
		var f types.Finding
		if err := rows.Scan(&f.ID, &f.URL, &f.Host); err != nil {
			return nil, fmt.Errorf("scanning finding: %w", err)
		}
		findings = append(findings, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating findings: %w", err)
	}
	return findings, nil
}

// FindingExists checks if a finding with this ID exists.
func (s *SQLiteStore) FindingExists(findingID string) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM findings WHERE id = ?", findingID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking finding existence: %w", err)
	}
	return count > 0, nil
}

// BlobExists checks if a blob has already been scanned.
func (s *SQLiteStore) BlobExists(id types.BlobID) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM blobs WHERE id = ?", id.Hex()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking blob existence: %w", err)
	}
	return count > 0, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
