package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtocolMatcher_Find(t *testing.T) {
	p := DefaultProtocolMatcher()

	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"http://a", 0, true},
		{"https://a", 0, true},
		{"see https://a", 4, true},
		{"ü http://a", 2, true},
		{"例え(https://a)", 3, true},
		{"http:/a", 0, false},
		{"HTTPS://a", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := p.Find(tt.input)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestProtocolMatcher_Default(t *testing.T) {
	assert.Same(t, DefaultProtocolMatcher(), DefaultProtocolMatcher())
	assert.Equal(t, []string{"http://", "https://"}, DefaultProtocolMatcher().Literals())
}

func TestProtocolMatcher_CustomSchemes(t *testing.T) {
	p, err := NewProtocolMatcher("ws", "wss", "git+ssh")
	require.NoError(t, err)

	off, ok := p.Find("clone git+ssh://host/repo")
	require.True(t, ok)
	assert.Equal(t, 6, off)

	off, ok = p.Find("[wss://socket]")
	require.True(t, ok)
	assert.Equal(t, 1, off)

	_, ok = p.Find("gitXssh://host")
	assert.False(t, ok, "scheme metacharacters are escaped")
}

func TestProtocolMatcher_InvalidSchemes(t *testing.T) {
	for _, scheme := range []string{"", "ht tp", "1http", "http:", "+ssh", "héllo"} {
		_, err := NewProtocolMatcher("http", scheme)
		assert.Error(t, err, "scheme %q", scheme)
	}

	_, err := NewProtocolMatcher("svn+ssh", "x-custom", "web.v2", "H2")
	assert.NoError(t, err)
}

func TestProtocolMatcher_LiteralsAreCopied(t *testing.T) {
	p := DefaultProtocolMatcher()
	lits := p.Literals()
	lits[0] = "mutated"

	assert.Equal(t, "http://", p.Literals()[0])
}
