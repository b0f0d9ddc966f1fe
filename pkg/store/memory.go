package store

import (
	"fmt"
	"sync"

	"github.com/praetorian-inc/urlspan/pkg/types"
)

// blobRecord stores blob metadata.
type blobRecord struct {
	id   types.BlobID
	size int64
}

// MemoryStore implements Store using in-memory data structures.
type MemoryStore struct {
	mu           sync.RWMutex
	blobs        map[types.BlobID]blobRecord
	matches      []*types.Match
	matchIDs     map[string]struct{}           // structural IDs already stored
	findings     map[string]*types.Finding     // keyed by finding ID
	findingOrder []string                      // finding IDs in insertion order
	provenance   map[types.BlobID][]types.Provenance
}

// NewMemory creates a new in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		blobs:      make(map[types.BlobID]blobRecord),
		matches:    make([]*types.Match, 0),
		matchIDs:   make(map[string]struct{}),
		findings:   make(map[string]*types.Finding),
		provenance: make(map[types.BlobID][]types.Provenance),
	}
}

// AddBlob stores a blob record.
func (m *MemoryStore) AddBlob(id types.BlobID, size int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.blobs[id]; exists {
		// Idempotent - already exists
		return nil
	}

	m.blobs[id] = blobRecord{
		id:   id,
		size: size,
	}
	return nil
}

// AddMatch stores a match record.
func (m *MemoryStore) AddMatch(match *types.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if match.StructuralID != "" {
		if _, exists := m.matchIDs[match.StructuralID]; exists {
			return nil
		}
		m.matchIDs[match.StructuralID] = struct{}{}
	}
	m.matches = append(m.matches, match)
	return nil
}

// AddFinding stores a finding (deduplicated).
func (m *MemoryStore) AddFinding(f *types.Finding) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.findings[f.ID]; exists {
		return nil
	}

	m.findings[f.ID] = f
	m.findingOrder = append(m.findingOrder, f.ID)
	return nil
}

// AddProvenance associates provenance with a blob.
func (m *MemoryStore) AddProvenance(blobID types.BlobID, prov types.Provenance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.provenance[blobID] {
		if provenanceKey(p) == provenanceKey(prov) {
			return nil
		}
	}

	m.provenance[blobID] = append(m.provenance[blobID], prov)
	return nil
}

// GetAllProvenance retrieves all provenance records for a blob.
func (m *MemoryStore) GetAllProvenance(blobID types.BlobID) ([]types.Provenance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	provs := m.provenance[blobID]
	result := make([]types.Provenance, len(provs))
	copy(result, provs)
	return result, nil
}

// GetProvenance retrieves provenance for a blob.
func (m *MemoryStore) GetProvenance(blobID types.BlobID) (types.Provenance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	provs := m.provenance[blobID]
	if len(provs) == 0 {
		return nil, fmt.Errorf("no provenance found for blob %s", blobID.Hex())
	}
	return provs[0], nil
}

// GetMatches retrieves matches for a blob.
func (m *MemoryStore) GetMatches(blobID types.BlobID) ([]*types.Match, error) {
	return m.filterMatches(func(match *types.Match) bool {
		return match.BlobID == blobID
	}), nil
}

// GetMatchesByFinding retrieves every match sharing a finding ID.
func (m *MemoryStore) GetMatchesByFinding(findingID string) ([]*types.Match, error) {
	return m.filterMatches(func(match *types.Match) bool {
		return match.FindingID == findingID
	}), nil
}

func (m *MemoryStore) filterMatches(keep func(*types.Match) bool) []*types.Match {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*types.Match, 0)
	for _, match := range m.matches {
		if keep(match) {
			result = append(result, match)
		}
	}
	return result
}

// GetAllMatches retrieves all matches (for JSON export).
func (m *MemoryStore) GetAllMatches() ([]*types.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to avoid external modifications
	result := make([]*types.Match, len(m.matches))
	copy(result, m.matches)
	return result, nil
}

// GetFindings retrieves all findings (for reporting).
func (m *MemoryStore) GetFindings() ([]*types.Finding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*types.Finding, 0, len(m.findingOrder))
	for _, id := range m.findingOrder {
		result = append(result, m.findings[id])
	}
	return result, nil
}

// FindingExists checks if a finding with this ID exists.
func (m *MemoryStore) FindingExists(findingID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.findings[findingID]
	return exists, nil
}

// BlobExists checks if a blob has already been scanned.
func (m *MemoryStore) BlobExists(id types.BlobID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.blobs[id]
	return exists, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
