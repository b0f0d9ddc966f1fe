package types

// ComputeLineColumn computes line and column numbers from a byte offset in content.
// Lines and columns are 1-indexed (first line is 1, first column is 1).
// Offsets past the end of content stop at the end.
func ComputeLineColumn(content []byte, byteOffset int) (line, column int) {
	line, column = 1, 1
	if byteOffset > len(content) {
		byteOffset = len(content)
	}
	for _, b := range content[:max(byteOffset, 0)] {
		if b == '\n' {
			line++
			column = 1
			continue
		}
		column++
	}
	return line, column
}
