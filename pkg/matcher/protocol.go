package matcher

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultSchemes are the URL schemes recognized by the default protocol matcher.
var DefaultSchemes = []string{"http", "https"}

// protocolMatchTimeout bounds a single protocol search; the pattern is a plain
// alternation so this only trips on pathological input sizes.
const protocolMatchTimeout = 5 * time.Second

// ProtocolMatcher locates the first scheme prefix such as "http://" in a string.
// It is immutable after construction and safe for concurrent use.
//
// Matching uses regexp2, which reports positions as rune indices, so the
// returned offsets are character offsets rather than byte offsets.
type ProtocolMatcher struct {
	re       *regexp2.Regexp
	literals []string
}

// NewProtocolMatcher compiles a matcher for the given schemes.
// With no schemes it recognizes DefaultSchemes. Matching is case-sensitive.
func NewProtocolMatcher(schemes ...string) (*ProtocolMatcher, error) {
	if len(schemes) == 0 {
		schemes = DefaultSchemes
	}

	quoted := make([]string, 0, len(schemes))
	literals := make([]string, 0, len(schemes))
	for _, s := range schemes {
		if err := validScheme(s); err != nil {
			return nil, err
		}
		quoted = append(quoted, regexp2.Escape(s))
		literals = append(literals, s+"://")
	}

	pattern := "(" + strings.Join(quoted, "|") + ")://"
	re, err := regexp2.Compile(pattern, regexp2.RE2)
	if err != nil {
		return nil, fmt.Errorf("compiling protocol pattern %q: %w", pattern, err)
	}
	re.MatchTimeout = protocolMatchTimeout

	return &ProtocolMatcher{re: re, literals: literals}, nil
}

// validScheme checks RFC 3986 scheme syntax: ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
func validScheme(s string) error {
	if s == "" {
		return fmt.Errorf("empty scheme")
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return fmt.Errorf("invalid scheme %q", s)
		}
	}
	return nil
}

var defaultProtocolMatcher = sync.OnceValue(func() *ProtocolMatcher {
	m, err := NewProtocolMatcher()
	if err != nil {
		panic(err)
	}
	return m
})

// DefaultProtocolMatcher returns the shared http/https matcher, compiled on first use.
func DefaultProtocolMatcher() *ProtocolMatcher {
	return defaultProtocolMatcher()
}

// Find returns the rune offset of the first protocol literal in input.
func (p *ProtocolMatcher) Find(input string) (int, bool) {
	return p.FindRunes([]rune(input))
}

// FindRunes is Find over an already decoded rune slice.
func (p *ProtocolMatcher) FindRunes(runes []rune) (int, bool) {
	m, err := p.re.FindRunesMatch(runes)
	if err != nil || m == nil {
		return 0, false
	}
	return m.Index, true
}

// Literals returns the "scheme://" strings this matcher recognizes.
func (p *ProtocolMatcher) Literals() []string {
	out := make([]string, len(p.literals))
	copy(out, p.literals)
	return out
}
