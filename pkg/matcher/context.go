package matcher

import "bytes"

// ExtractContext returns up to lines lines of content before start and after
// end. before also carries the part of the URL's own line that precedes it,
// and after the part that follows it, so before+URL+after reads as a block.
//
// The returned slices are copies and do not pin content in memory.
// Invalid ranges and lines <= 0 yield nil.
func ExtractContext(content []byte, start, end int, lines int) (before, after []byte) {
	if lines <= 0 || start < 0 || end > len(content) || start > end {
		return nil, nil
	}

	if b := contextBefore(content, start, lines); len(b) > 0 {
		before = bytes.Clone(b)
	}
	if a := contextAfter(content, end, lines); len(a) > 0 {
		after = bytes.Clone(a)
	}
	return before, after
}

// contextBefore walks back to the (lines+1)-th newline before start.
func contextBefore(content []byte, start, lines int) []byte {
	if start == 0 {
		return nil
	}
	cut := start
	for n := 0; n <= lines; n++ {
		i := bytes.LastIndexByte(content[:cut], '\n')
		if i < 0 {
			return content[:start]
		}
		cut = i
	}
	return content[cut+1 : start]
}

// contextAfter walks forward over lines newlines, skipping the newline that
// terminates the URL's own line.
func contextAfter(content []byte, end, lines int) []byte {
	if end >= len(content) {
		return nil
	}
	from := end
	if content[from] == '\n' {
		from++
	}
	if from >= len(content) {
		return nil
	}
	cut := from
	for n := 0; n < lines; n++ {
		i := bytes.IndexByte(content[cut:], '\n')
		if i < 0 {
			return content[from:]
		}
		cut += i + 1
	}
	return content[from:cut]
}
