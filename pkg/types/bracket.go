package types

// BracketType is one of the four bracket kinds recognized around and inside URLs.
type BracketType int

const (
	Paren   BracketType = iota // ( )
	Bracket                    // [ ]
	Brace                      // { }
	Angled                     // < >
)

// bracketPairs maps each BracketType to its opener and closer.
var bracketPairs = [...]struct {
	opener rune
	closer rune
	name   string
}{
	Paren:   {'(', ')', "paren"},
	Bracket: {'[', ']', "bracket"},
	Brace:   {'{', '}', "brace"},
	Angled:  {'<', '>', "angled"},
}

// BracketTypes lists every recognized bracket type in declaration order.
var BracketTypes = []BracketType{Paren, Bracket, Brace, Angled}

// Opener returns the opening character, or 0 for an unknown type.
func (b BracketType) Opener() rune {
	if !b.Valid() {
		return 0
	}
	return bracketPairs[b].opener
}

// Closer returns the closing character, or 0 for an unknown type.
func (b BracketType) Closer() rune {
	if !b.Valid() {
		return 0
	}
	return bracketPairs[b].closer
}

// Valid reports whether b is one of the four recognized types.
func (b BracketType) Valid() bool {
	return b >= Paren && b <= Angled
}

// String implements Stringer.
func (b BracketType) String() string {
	if !b.Valid() {
		return "unknown"
	}
	return bracketPairs[b].name
}

// Wrap surrounds s with the opener and closer of b.
func (b BracketType) Wrap(s string) string {
	return string(b.Opener()) + s + string(b.Closer())
}
