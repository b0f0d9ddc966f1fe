package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMatch(content string, start, end int64) *Match {
	return &Match{
		BlobID: ComputeBlobID([]byte(content)),
		URL:    "https://example.com",
		Scheme: "https",
		Host:   "example.com",
		Location: Location{
			Offset: OffsetSpan{Start: start, End: end},
		},
	}
}

func TestMatch_ComputeStructuralID(t *testing.T) {
	m := newTestMatch("x https://example.com", 2, 21)

	id := m.ComputeStructuralID()

	assert.Len(t, id, 40)
	assert.Equal(t, id, m.ComputeStructuralID(), "must be deterministic")
}

func TestMatch_StructuralIDDependsOnLocation(t *testing.T) {
	a := newTestMatch("content", 0, 19)
	b := newTestMatch("content", 1, 20)
	c := newTestMatch("other content", 0, 19)

	assert.NotEqual(t, a.ComputeStructuralID(), b.ComputeStructuralID())
	assert.NotEqual(t, a.ComputeStructuralID(), c.ComputeStructuralID())
}

func TestMatch_JSON(t *testing.T) {
	m := newTestMatch("content", 0, 19)
	m.Snippet = Snippet{Matching: []byte("https://example.com")}

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Match
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, m.BlobID, decoded.BlobID)
	assert.Equal(t, m.URL, decoded.URL)
	assert.Equal(t, m.Location, decoded.Location)
}
