package types

import (
	"fmt"
	"time"
)

// Provenance tracks where scanned content came from.
type Provenance interface {
	Kind() string
	// Path returns displayable path (if applicable)
	Path() string
}

// FileProvenance for filesystem files.
type FileProvenance struct {
	FilePath string
}

// Kind returns "file".
func (f FileProvenance) Kind() string {
	return "file"
}

// Path returns the file path.
func (f FileProvenance) Path() string {
	return f.FilePath
}

// GitProvenance for git repository blobs.
type GitProvenance struct {
	RepoPath string
	Commit   *CommitMetadata // nil if not tracking commit info
	BlobPath string          // path within repo at commit
}

// Kind returns "git".
func (g GitProvenance) Kind() string {
	return "git"
}

// Path returns the blob path within the repository.
func (g GitProvenance) Path() string {
	return g.BlobPath
}

// CommitMetadata holds git commit information.
type CommitMetadata struct {
	CommitID        string
	AuthorName      string
	AuthorEmail     string
	AuthorTimestamp time.Time
	Message         string
}

// ArchiveProvenance tracks text extracted from a document container (pdf, docx, html).
type ArchiveProvenance struct {
	ArchivePath string
	MemberPath  string // e.g. "word/document.xml" or "page"
}

// Kind returns "archive".
func (a ArchiveProvenance) Kind() string {
	return "archive"
}

// Path returns the archive path with member path.
func (a ArchiveProvenance) Path() string {
	return fmt.Sprintf("%s:%s", a.ArchivePath, a.MemberPath)
}

// StreamProvenance for content read from a stream such as stdin.
type StreamProvenance struct {
	Name string
}

// Kind returns "stream".
func (s StreamProvenance) Kind() string {
	return "stream"
}

// Path returns the stream name.
func (s StreamProvenance) Path() string {
	return s.Name
}
