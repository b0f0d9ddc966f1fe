package prefilter

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var protocols = []string{"http://", "https://"}

func TestPrefilter_MatchingLiteral(t *testing.T) {
	pf := New(protocols)

	assert.True(t, pf.MayContain([]byte("see (https://example.com) for details")))
	assert.True(t, pf.MayContain([]byte("http://google")))
}

func TestPrefilter_NoLiteral(t *testing.T) {
	pf := New(protocols)

	assert.False(t, pf.MayContain([]byte("no links here, just (parens)")))
	assert.False(t, pf.MayContain([]byte("ftp://example.com")))
	assert.False(t, pf.MayContain([]byte("HTTP://EXAMPLE.COM")), "matching is case-sensitive")
}

func TestPrefilter_Hits(t *testing.T) {
	pf := New(protocols)

	hits := pf.Hits([]byte("https://a.io and http://b.io"))

	require.Len(t, hits, 2)
	assert.Equal(t, []string{"http://", "https://"}, hits)
}

func TestPrefilter_EmptyContent(t *testing.T) {
	pf := New(protocols)

	assert.False(t, pf.MayContain(nil))
	assert.Empty(t, pf.Hits([]byte("")))
}

func TestPrefilter_NoLiterals(t *testing.T) {
	pf := New(nil)

	assert.False(t, pf.MayContain([]byte("https://example.com")))
	assert.Empty(t, pf.Literals())
}

func TestPrefilter_DeduplicatesLiterals(t *testing.T) {
	pf := New([]string{"http://", "http://", "", "https://"})

	assert.Equal(t, protocols, pf.Literals())
}

func TestPrefilter_ConcurrentUse(t *testing.T) {
	pf := New(protocols)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				assert.True(t, pf.MayContain([]byte("x https://a.io")))
			} else {
				assert.False(t, pf.MayContain([]byte("nothing")))
			}
		}(i)
	}
	wg.Wait()
}
