package enum

import (
	"context"
	"fmt"
	"io"

	"github.com/praetorian-inc/urlspan/pkg/types"
)

// ReaderEnumerator yields the whole of an io.Reader as a single blob.
type ReaderEnumerator struct {
	r    io.Reader
	name string
	max  int64
}

// NewReaderEnumerator creates an enumerator over r. name labels the blob's
// provenance (e.g. "stdin"); maxSize caps how much is read (0 = no limit).
func NewReaderEnumerator(r io.Reader, name string, maxSize int64) *ReaderEnumerator {
	return &ReaderEnumerator{r: r, name: name, max: maxSize}
}

// Enumerate reads the stream and invokes callback once.
func (e *ReaderEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r := e.r
	if e.max > 0 {
		r = io.LimitReader(r, e.max)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading %s: %w", e.name, err)
	}

	return callback(content, types.ComputeBlobID(content), types.StreamProvenance{Name: e.name})
}
