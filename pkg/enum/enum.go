package enum

import (
	"context"

	"go.uber.org/zap"

	"github.com/praetorian-inc/urlspan/pkg/types"
)

// Callback receives one blob: its content, its ID, and where it came from.
type Callback func(content []byte, blobID types.BlobID, prov types.Provenance) error

// Enumerator discovers content to scan from a source.
type Enumerator interface {
	// Enumerate yields blobs from the source.
	Enumerate(ctx context.Context, callback Callback) error
}

// Config for enumeration.
type Config struct {
	// Root is the starting path for enumeration.
	Root string

	// IncludeHidden includes hidden files/directories (starting with .).
	IncludeHidden bool

	// MaxFileSize is the maximum file size to process (0 = no limit).
	MaxFileSize int64

	// FollowSymlinks follows symbolic links.
	FollowSymlinks bool

	// Extract enables text extraction from documents
	// (comma-separated: pdf,docx,xlsx,html or 'all').
	Extract string

	// Logger receives skipped-file notices (nil = no logging).
	Logger *zap.Logger
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
