package matcher

import "github.com/praetorian-inc/urlspan/pkg/types"

// ResolveBoundary returns the absolute rune offset at which a URL starting at
// start must stop. It is the earliest unbalanced bracket of any recognized
// type in runes[start:], or len(runes) when every type balances.
// The character at the boundary is not part of the URL.
func ResolveBoundary(runes []rune, start int) int {
	if start < 0 || start > len(runes) {
		return len(runes)
	}

	tail := runes[start:]
	boundary := len(tail)
	for _, bt := range types.BracketTypes {
		if off, ok := FindFirstUnbalanced(tail, bt); ok && off < boundary {
			boundary = off
		}
	}
	return start + boundary
}

// BoundaryIndex answers ResolveBoundary for every start offset of one rune
// slice. It is built in linear time, so repeated lookups while scanning a
// long token stay linear overall.
type BoundaryIndex struct {
	bounds []int32
}

// NewBoundaryIndex precomputes the boundary for each start in [0, len(runes)].
func NewBoundaryIndex(runes []rune) *BoundaryIndex {
	n := len(runes)
	bounds := make([]int32, n+1)
	for i := range bounds {
		bounds[i] = int32(n)
	}

	depth := make([]int32, n+1)
	for _, bt := range types.BracketTypes {
		opener, closer := bt.Opener(), bt.Closer()
		lo, hi := int32(0), int32(0)
		for i, r := range runes {
			depth[i+1] = depth[i]
			switch r {
			case opener:
				depth[i+1]++
			case closer:
				depth[i+1]--
			}
			lo = min(lo, depth[i+1])
			hi = max(hi, depth[i+1])
		}

		// last[d] is the largest index below n where the depth is d. When a
		// suffix never drops below its starting depth d but ends deeper, the
		// opener at last[d] is the earliest one left unclosed.
		last := make([]int32, hi-lo+1)
		for i := 0; i < n; i++ {
			last[depth[i]-lo] = int32(i)
		}

		// next[d] is the smallest index above s where the depth is d. The
		// first orphan closer of the suffix at s is the rune just before the
		// depth first reaches depth[s]-1.
		next := make([]int32, hi-lo+1)
		for i := range next {
			next[i] = -1
		}
		for s := n; s >= 0; s-- {
			off := int32(-1)
			if d := depth[s] - 1; d >= lo {
				if k := next[d-lo]; k >= 0 {
					off = k - 1
				}
			}
			if off < 0 && depth[n] > depth[s] {
				off = last[depth[s]-lo]
			}
			if off >= 0 && off < bounds[s] {
				bounds[s] = off
			}
			next[depth[s]-lo] = int32(s)
		}
	}
	return &BoundaryIndex{bounds: bounds}
}

// Resolve returns the same value as ResolveBoundary(runes, start).
func (b *BoundaryIndex) Resolve(start int) int {
	n := len(b.bounds) - 1
	if start < 0 || start > n {
		return n
	}
	return int(b.bounds[start])
}
