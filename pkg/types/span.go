package types

import (
	"fmt"
	"unicode/utf8"
)

// Span is an inclusive rune range [Start, End] into a string.
// Offsets count Unicode scalar values, not bytes.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of runes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start + 1
}

// Shift returns the span moved right by n runes.
func (s Span) Shift(n int) Span {
	return Span{Start: s.Start + n, End: s.End + n}
}

// Slice returns the text covered by the span.
// Out-of-range spans yield an empty string.
func (s Span) Slice(input string) string {
	if s.Start < 0 || s.End < s.Start {
		return ""
	}
	runes := []rune(input)
	if s.End >= len(runes) {
		return ""
	}
	return string(runes[s.Start : s.End+1])
}

// ByteOffsets converts the span into a half-open byte range of input.
func (s Span) ByteOffsets(input string) (start, end int, err error) {
	if s.Start < 0 || s.End < s.Start {
		return 0, 0, fmt.Errorf("invalid span [%d, %d]", s.Start, s.End)
	}
	start, end = -1, -1
	i := 0
	for off := range input {
		if i == s.Start {
			start = off
		}
		if i == s.End+1 {
			end = off
			break
		}
		i++
	}
	if start == -1 {
		return 0, 0, fmt.Errorf("span start %d beyond input of %d runes", s.Start, utf8.RuneCountInString(input))
	}
	if end == -1 {
		if i < s.End+1 {
			return 0, 0, fmt.Errorf("span end %d beyond input of %d runes", s.End, utf8.RuneCountInString(input))
		}
		end = len(input)
	}
	return start, end, nil
}

// String implements Stringer.
func (s Span) String() string {
	return fmt.Sprintf("[%d, %d]", s.Start, s.End)
}
