package matcher

import (
	"testing"

	"github.com/praetorian-inc/urlspan/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDedupeMode(t *testing.T) {
	tests := []struct {
		in      string
		want    DedupeMode
		wantErr bool
	}{
		{"", DedupeByLocation, false},
		{"location", DedupeByLocation, false},
		{"url", DedupeByURL, false},
		{"URL", 0, true},
		{"host", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDedupeMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDedupeMode_String(t *testing.T) {
	assert.Equal(t, "location", DedupeByLocation.String())
	assert.Equal(t, "url", DedupeByURL.String())
}

func TestDeduplicator_ByLocation(t *testing.T) {
	d := NewDeduplicator(DedupeByLocation)
	assert.Equal(t, DedupeByLocation, d.Mode())

	m1 := &types.Match{StructuralID: "abc123", URL: "https://a.io"}
	m2 := &types.Match{StructuralID: "def456", URL: "https://a.io"}

	assert.False(t, d.IsDuplicate(m1))
	d.Add(m1)
	assert.True(t, d.IsDuplicate(m1))
	assert.False(t, d.IsDuplicate(m2), "same URL at another location is kept")
}

func TestDeduplicator_ByURL(t *testing.T) {
	d := NewDeduplicator(DedupeByURL)

	m1 := &types.Match{StructuralID: "abc123", URL: "https://a.io"}
	m2 := &types.Match{StructuralID: "def456", URL: "https://a.io"}
	m3 := &types.Match{StructuralID: "ghi789", URL: "https://b.io"}

	d.Add(m1)
	assert.True(t, d.IsDuplicate(m2))
	assert.False(t, d.IsDuplicate(m3))
}

func TestDeduplicator_ByURLUsesFindingID(t *testing.T) {
	d := NewDeduplicator(DedupeByURL)

	m1 := &types.Match{URL: "https://a.io"}
	m2 := &types.Match{URL: "https://a.io", FindingID: types.ComputeFindingID("https://a.io")}

	d.Add(m1)
	assert.True(t, d.IsDuplicate(m2), "computed and stored finding IDs agree")
}

func TestDeduplicator_Reset(t *testing.T) {
	d := NewDeduplicator(DedupeByLocation)
	m := &types.Match{StructuralID: "abc123"}

	d.Add(m)
	require.True(t, d.IsDuplicate(m))

	d.Reset()
	assert.False(t, d.IsDuplicate(m))
	assert.Equal(t, DedupeByLocation, d.Mode())
}
