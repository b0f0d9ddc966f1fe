package matcher

import "github.com/praetorian-inc/urlspan/pkg/types"

// FindFirstUnbalanced returns the offset in runes where nesting of bt breaks.
//
// A closer with no opener before it is returned immediately. Otherwise, if
// openers remain unmatched at the end, the earliest of them is returned.
// ok is false when every opener of bt is closed.
func FindFirstUnbalanced(runes []rune, bt types.BracketType) (offset int, ok bool) {
	opener, closer := bt.Opener(), bt.Closer()
	var stack []int

	for i, r := range runes {
		switch r {
		case opener:
			stack = append(stack, i)
		case closer:
			if len(stack) == 0 {
				return i, true
			}
			stack = stack[:len(stack)-1]
		}
	}

	if len(stack) > 0 {
		return stack[0], true
	}
	return 0, false
}
