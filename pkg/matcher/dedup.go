package matcher

import (
	"fmt"

	"github.com/praetorian-inc/urlspan/pkg/types"
)

// DedupeMode controls how matches are deduplicated.
type DedupeMode int

const (
	// DedupeByLocation keeps every occurrence; only the same bytes of the same
	// blob count as duplicates.
	DedupeByLocation DedupeMode = iota

	// DedupeByURL keeps the first occurrence of each distinct URL in a blob.
	DedupeByURL
)

// ParseDedupeMode parses "location" or "url".
func ParseDedupeMode(s string) (DedupeMode, error) {
	switch s {
	case "", "location":
		return DedupeByLocation, nil
	case "url":
		return DedupeByURL, nil
	default:
		return 0, fmt.Errorf("unknown dedupe mode: %s", s)
	}
}

// String implements Stringer.
func (m DedupeMode) String() string {
	if m == DedupeByURL {
		return "url"
	}
	return "location"
}

// Deduplicator removes duplicate matches. It is not safe for concurrent use.
type Deduplicator struct {
	seen map[string]struct{}
	mode DedupeMode
}

// NewDeduplicator creates a deduplicator for the given mode.
func NewDeduplicator(mode DedupeMode) *Deduplicator {
	return &Deduplicator{
		seen: make(map[string]struct{}),
		mode: mode,
	}
}

// Mode returns the deduplication mode.
func (d *Deduplicator) Mode() DedupeMode {
	return d.mode
}

// IsDuplicate returns true if match was already seen.
func (d *Deduplicator) IsDuplicate(m *types.Match) bool {
	_, ok := d.seen[d.key(m)]
	return ok
}

// Add marks a match as seen.
func (d *Deduplicator) Add(m *types.Match) {
	d.seen[d.key(m)] = struct{}{}
}

// Reset clears the deduplicator for reuse.
func (d *Deduplicator) Reset() {
	clear(d.seen)
}

func (d *Deduplicator) key(m *types.Match) string {
	if d.mode == DedupeByURL {
		if m.FindingID != "" {
			return m.FindingID
		}
		return types.ComputeFindingID(m.URL)
	}
	return m.StructuralID
}
