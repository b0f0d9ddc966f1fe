package enum

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/praetorian-inc/urlspan/pkg/types"
)

// FilesystemEnumerator enumerates files from a filesystem directory.
type FilesystemEnumerator struct {
	config Config
	log    *zap.Logger
}

// NewFilesystemEnumerator creates a new filesystem enumerator.
func NewFilesystemEnumerator(config Config) *FilesystemEnumerator {
	return &FilesystemEnumerator{config: config, log: config.logger()}
}

// Enumerate walks the filesystem and yields file blobs.
// Phase 1: Walk directory tree and collect eligible file paths (fast, sequential).
// Phase 2: Read files and invoke callback in parallel.
//
// The callback may be invoked from several goroutines at once.
func (e *FilesystemEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	info, err := os.Stat(e.config.Root)
	if err != nil {
		return fmt.Errorf("stat %s: %w", e.config.Root, err)
	}
	if !info.IsDir() {
		return e.processFile(ctx, e.config.Root, callback)
	}

	files, err := e.collect(ctx)
	if err != nil {
		return err
	}
	e.log.Debug("collected files", zap.String("root", e.config.Root), zap.Int("files", len(files)))

	numReaders := runtime.NumCPU()
	if numReaders < 1 {
		numReaders = 1
	}

	origCtx := ctx
	g, ctx := errgroup.WithContext(ctx)
	pathsCh := make(chan string, numReaders*2)

	// Feed paths to readers
	g.Go(func() error {
		defer close(pathsCh)
		for _, f := range files {
			select {
			case pathsCh <- f:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < numReaders; i++ {
		g.Go(func() error {
			for path := range pathsCh {
				if err := e.processFile(ctx, path, callback); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	// If the caller's context was cancelled but all goroutines finished
	// before noticing, propagate the cancellation.
	return origCtx.Err()
}

// collect walks the tree and returns eligible file paths.
func (e *FilesystemEnumerator) collect(ctx context.Context) ([]string, error) {
	var ignore *gitignore.GitIgnore
	gitignorePath := filepath.Join(e.config.Root, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		ignore, err = gitignore.CompileIgnoreFile(gitignorePath)
		if err != nil {
			e.log.Warn("ignoring unreadable .gitignore", zap.String("path", gitignorePath), zap.Error(err))
		}
	}

	var files []string
	err := filepath.Walk(e.config.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if path != e.config.Root && ignore != nil {
			relPath, err := filepath.Rel(e.config.Root, path)
			if err != nil {
				return err
			}
			if ignore.MatchesPath(relPath) {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if info.IsDir() {
			if path != e.config.Root && !e.config.IncludeHidden && isHidden(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 && !e.config.FollowSymlinks {
			return nil
		}

		if !e.config.IncludeHidden && isHidden(info.Name()) {
			return nil
		}

		if e.config.MaxFileSize > 0 && info.Size() > e.config.MaxFileSize {
			e.log.Debug("skipping large file", zap.String("path", path), zap.Int64("size", info.Size()))
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// processFile reads a single file and invokes the callback.
func (e *FilesystemEnumerator) processFile(ctx context.Context, path string, callback Callback) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}

	return emitFile(e.config, e.log, path, content, types.FileProvenance{FilePath: path}, callback)
}

// emitFile hands one file to callback. Documents selected for extraction are
// replaced by their text members; other binary content is skipped.
func emitFile(config Config, log *zap.Logger, name string, content []byte, prov types.Provenance, callback Callback) error {
	if shouldExtract(config, getExtension(name)) {
		extracted, err := ExtractText(name, content)
		if err != nil {
			log.Debug("text extraction failed", zap.String("path", name), zap.Error(err))
		} else {
			for _, ec := range extracted {
				member := types.ArchiveProvenance{
					ArchivePath: name,
					MemberPath:  ec.Name,
				}
				if err := callback(ec.Content, types.ComputeBlobID(ec.Content), member); err != nil {
					return err
				}
			}
			return nil
		}
	}

	if isBinary(content) {
		return nil
	}

	return callback(content, types.ComputeBlobID(content), prov)
}

// shouldExtract checks if a file type should be extracted based on config.
func shouldExtract(config Config, ext string) bool {
	if config.Extract == "" || !isExtractable(ext) {
		return false
	}
	if config.Extract == "all" {
		return true
	}
	ext = normalizeExtension(ext)
	for _, t := range strings.Split(strings.ToLower(config.Extract), ",") {
		if normalizeExtension("."+strings.TrimSpace(t)) == ext {
			return true
		}
	}
	return false
}

// isHidden checks if a filename is hidden (starts with .).
// The special entries "." and ".." are NOT considered hidden.
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}

// isBinary detects if content is binary by checking first 8KB for null bytes.
func isBinary(content []byte) bool {
	checkSize := min(len(content), 8192)
	return bytes.IndexByte(content[:checkSize], 0) != -1
}
