package enum

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"

	"github.com/praetorian-inc/urlspan/pkg/types"
)

// GitEnumerator enumerates blobs from a git repository.
type GitEnumerator struct {
	config Config
	log    *zap.Logger
	// CommitRef optionally specifies a specific commit to enumerate (defaults to HEAD)
	CommitRef string
}

// NewGitEnumerator creates a new git enumerator.
func NewGitEnumerator(config Config) *GitEnumerator {
	return &GitEnumerator{
		config:    config,
		log:       config.logger(),
		CommitRef: "HEAD",
	}
}

// Enumerate yields every unique blob in the tree of CommitRef.
func (e *GitEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	repo, err := git.PlainOpen(e.config.Root)
	if err != nil {
		return fmt.Errorf("failed to open git repository: %w", err)
	}

	ref, err := repo.ResolveRevision(plumbing.Revision(e.CommitRef))
	if err != nil {
		return fmt.Errorf("failed to resolve ref %s: %w", e.CommitRef, err)
	}

	commit, err := repo.CommitObject(*ref)
	if err != nil {
		return fmt.Errorf("failed to get commit: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return fmt.Errorf("failed to get tree: %w", err)
	}

	commitMeta := &types.CommitMetadata{
		CommitID:        commit.Hash.String(),
		AuthorName:      commit.Author.Name,
		AuthorEmail:     commit.Author.Email,
		AuthorTimestamp: commit.Author.When,
		Message:         commit.Message,
	}
	e.log.Debug("enumerating git tree",
		zap.String("repo", e.config.Root),
		zap.String("commit", commitMeta.CommitID))

	// Track seen blobs to avoid duplicates
	seen := make(map[plumbing.Hash]bool)

	err = tree.Files().ForEach(func(f *object.File) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if seen[f.Hash] {
			return nil
		}
		seen[f.Hash] = true

		if e.config.MaxFileSize > 0 && f.Size > e.config.MaxFileSize {
			return nil
		}

		contents, err := f.Contents()
		if err != nil {
			return fmt.Errorf("failed to get contents of %s: %w", f.Name, err)
		}
		prov := types.GitProvenance{
			RepoPath: e.config.Root,
			Commit:   commitMeta,
			BlobPath: f.Name,
		}
		return emitFile(e.config, e.log, f.Name, []byte(contents), prov, callback)
	})
	if err != nil {
		return fmt.Errorf("failed to walk tree: %w", err)
	}

	return nil
}
