package store

import "github.com/praetorian-inc/urlspan/pkg/types"

// Store provides persistence for scan results.
// This interface abstracts the underlying storage implementation,
// allowing for different backends (SQLite, in-memory).
type Store interface {
	// AddBlob stores a blob record.
	AddBlob(id types.BlobID, size int64) error

	// AddMatch stores a match record. Matches are unique by structural ID.
	AddMatch(m *types.Match) error

	// AddFinding stores a finding (deduplicated by URL).
	AddFinding(f *types.Finding) error

	// AddProvenance associates provenance with a blob.
	AddProvenance(blobID types.BlobID, prov types.Provenance) error

	// GetMatches retrieves matches for a blob.
	GetMatches(blobID types.BlobID) ([]*types.Match, error)

	// GetMatchesByFinding retrieves every occurrence of a finding's URL.
	GetMatchesByFinding(findingID string) ([]*types.Match, error)

	// GetAllMatches retrieves all matches (for JSON export).
	GetAllMatches() ([]*types.Match, error)

	// GetFindings retrieves all findings in insertion order (for reporting).
	GetFindings() ([]*types.Finding, error)

	// GetProvenance retrieves the first provenance recorded for a blob.
	GetProvenance(blobID types.BlobID) (types.Provenance, error)

	// GetAllProvenance retrieves every provenance recorded for a blob.
	GetAllProvenance(blobID types.BlobID) ([]types.Provenance, error)

	// FindingExists checks if a finding with this ID exists.
	FindingExists(findingID string) (bool, error)

	// BlobExists checks if a blob has already been scanned.
	BlobExists(id types.BlobID) (bool, error)

	// Close closes the database connection.
	Close() error
}

// Config for store initialization.
type Config struct {
	// Path is the database file path.
	// Use ":memory:" for an in-memory store (useful for testing).
	Path string
}
