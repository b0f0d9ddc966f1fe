package types

import (
	"crypto/sha1"
	"encoding/hex"
)

// Finding groups every match of the same URL.
type Finding struct {
	ID      string // SHA-1(url)
	URL     string
	Host    string
	Matches []*Match // matches belonging to this finding
}

// ComputeFindingID computes the content-based finding ID.
func ComputeFindingID(url string) string {
	h := sha1.New()
	h.Write([]byte(url))
	return hex.EncodeToString(h.Sum(nil))
}

// NewFinding creates a finding seeded from a match.
func NewFinding(m *Match) *Finding {
	id := m.FindingID
	if id == "" {
		id = ComputeFindingID(m.URL)
	}
	return &Finding{
		ID:   id,
		URL:  m.URL,
		Host: m.Host,
	}
}
