package prefilter

import (
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// Prefilter uses Aho-Corasick to cheaply decide whether content can contain
// a URL at all, before the rune-level extractor runs.
type Prefilter struct {
	mu       sync.Mutex // ahocorasick.Matcher keeps per-call state
	matcher  *ahocorasick.Matcher
	literals []string
}

// New creates a prefilter for protocol literals such as "https://".
func New(literals []string) *Prefilter {
	pf := &Prefilter{}

	seen := make(map[string]bool)
	for _, lit := range literals {
		if lit == "" || seen[lit] {
			continue
		}
		seen[lit] = true
		pf.literals = append(pf.literals, lit)
	}

	if len(pf.literals) > 0 {
		pf.matcher = ahocorasick.NewStringMatcher(pf.literals)
	}
	return pf
}

// MayContain reports whether any literal occurs in content.
func (pf *Prefilter) MayContain(content []byte) bool {
	return len(pf.Hits(content)) > 0
}

// Hits returns the distinct literals found in content, in construction order.
func (pf *Prefilter) Hits(content []byte) []string {
	if pf.matcher == nil || len(content) == 0 {
		return nil
	}

	pf.mu.Lock()
	idx := pf.matcher.Match(content)
	pf.mu.Unlock()

	if len(idx) == 0 {
		return nil
	}
	found := make([]bool, len(pf.literals))
	for _, i := range idx {
		found[i] = true
	}
	hits := make([]string, 0, len(idx))
	for i, ok := range found {
		if ok {
			hits = append(hits, pf.literals[i])
		}
	}
	return hits
}

// Literals returns the literals the prefilter looks for.
func (pf *Prefilter) Literals() []string {
	out := make([]string, len(pf.literals))
	copy(out, pf.literals)
	return out
}
