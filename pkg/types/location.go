package types

// OffsetSpan is a byte range [Start, End) into scanned content.
// Extraction works in runes; scanning reports bytes so offsets can be used to
// slice the original content directly.
type OffsetSpan struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Len returns the number of bytes covered.
func (o OffsetSpan) Len() int64 {
	return o.End - o.Start
}

// SourcePoint is line:column position (1-based, column counts bytes).
type SourcePoint struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// SourceSpan is start-end line:column range. End points at the last byte of the URL.
type SourceSpan struct {
	Start SourcePoint `json:"start"`
	End   SourcePoint `json:"end"`
}

// Location combines byte offsets and source positions.
type Location struct {
	Offset OffsetSpan `json:"offset"`
	Source SourceSpan `json:"source"`
}

// NewLocation builds a Location for the byte range [start, end) of content.
func NewLocation(content []byte, start, end int) Location {
	loc := Location{
		Offset: OffsetSpan{Start: int64(start), End: int64(end)},
	}
	loc.Source.Start.Line, loc.Source.Start.Column = ComputeLineColumn(content, start)
	last := end - 1
	if last < start {
		last = start
	}
	loc.Source.End.Line, loc.Source.End.Column = ComputeLineColumn(content, last)
	return loc
}
