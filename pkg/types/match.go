package types

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// MatchKind identifies what produced a match; every match today is a URL.
const MatchKind = "urlspan.url"

// Match is a single URL found in scanned content.
type Match struct {
	BlobID       BlobID
	StructuralID string // SHA-1(blob_id + '\0' + start + '\0' + end)
	FindingID    string // SHA-1(url), shared by every occurrence of the same URL
	URL          string
	Scheme       string
	Host         string
	Location     Location
	Snippet      Snippet
}

// ComputeStructuralID computes the location-based unique ID.
// Format: SHA-1(blob_id + '\0' + start + '\0' + end)
func (m *Match) ComputeStructuralID() string {
	h := sha1.New()

	h.Write(m.BlobID[:])
	h.Write([]byte{0})

	fmt.Fprintf(h, "%d", m.Location.Offset.Start)
	h.Write([]byte{0})

	fmt.Fprintf(h, "%d", m.Location.Offset.End)

	return hex.EncodeToString(h.Sum(nil))
}
