package matcher

import (
	"unicode"
	"unicode/utf8"
)

// Token is a maximal run of non-whitespace bytes in scanned content.
// Start and End are byte offsets, End exclusive.
type Token struct {
	Start int
	End   int
	Text  []byte
}

// Tokenize splits content on Unicode whitespace. Invalid UTF-8 bytes are
// treated as non-whitespace so they stay inside their token.
func Tokenize(content []byte) []Token {
	var tokens []Token
	start := -1
	for i := 0; i < len(content); {
		r, size := utf8.DecodeRune(content[i:])
		space := r != utf8.RuneError && unicode.IsSpace(r)
		switch {
		case space && start >= 0:
			tokens = append(tokens, Token{Start: start, End: i, Text: content[start:i]})
			start = -1
		case !space && start < 0:
			start = i
		}
		i += size
	}
	if start >= 0 {
		tokens = append(tokens, Token{Start: start, End: len(content), Text: content[start:]})
	}
	return tokens
}

// runeByteOffsets returns the byte offset of every rune in s plus len(s),
// matching how []rune(s) decodes invalid bytes one at a time.
func runeByteOffsets(s string) []int {
	offs := make([]int, 0, len(s)+1)
	for i := range s {
		offs = append(offs, i)
	}
	return append(offs, len(s))
}
