package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBlobID(t *testing.T) {
	tests := []struct {
		name     string
		content  []byte
		expected string
	}{
		{
			name:    "empty content",
			content: []byte(""),
			// Git: echo -n "" | git hash-object --stdin
			expected: "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391",
		},
		{
			name:     "hello world",
			content:  []byte("hello world"),
			expected: "95d09f2b10159347eece71399a7e2e907ea3df4f",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeBlobID(tt.content).Hex())
		})
	}
}

func TestParseBlobID(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expectErr bool
	}{
		{"valid hex", "123456789abcdef0123456789abcdef012345678", false},
		{"too short", "123456789abcdef0123456789abcdef01234567", true},
		{"too long", "123456789abcdef0123456789abcdef0123456789", true},
		{"invalid hex", "zzz456789abcdef0123456789abcdef012345678", true},
		{"uppercase valid", "ABCDEF0123456789ABCDEF0123456789ABCDEF01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseBlobID(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.ToLower(tt.input), id.Hex())
		})
	}
}

func TestBlobID_JSON(t *testing.T) {
	id := ComputeBlobID([]byte("https://example.com"))

	data, err := id.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"`+id.Hex()+`"`, string(data))

	var decoded BlobID
	require.NoError(t, decoded.UnmarshalJSON(data))
	assert.Equal(t, id, decoded)

	assert.Error(t, decoded.UnmarshalJSON([]byte(`123`)))
}
