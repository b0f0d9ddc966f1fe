package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeLineColumn(t *testing.T) {
	tests := []struct {
		name       string
		content    []byte
		byteOffset int
		wantLine   int
		wantColumn int
	}{
		{"empty content at offset 0", []byte{}, 0, 1, 1},
		{"single line at offset 2", []byte("hello"), 2, 1, 3},
		{"multi-line at offset 7", []byte("hello\nworld"), 7, 2, 2},
		{"offset at newline", []byte("hello\nworld"), 5, 1, 6},
		{"offset beyond content length", []byte("hello"), 100, 1, 6},
		{"offset at start of second line", []byte("hello\nworld"), 6, 2, 1},
		{"multiple newlines", []byte("line1\nline2\nline3"), 12, 3, 1},
		{"negative offset", []byte("hello"), -3, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, column := ComputeLineColumn(tt.content, tt.byteOffset)
			assert.Equal(t, tt.wantLine, line)
			assert.Equal(t, tt.wantColumn, column)
		})
	}
}
