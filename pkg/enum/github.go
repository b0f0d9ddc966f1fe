package enum

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/praetorian-inc/urlspan/pkg/types"
)

// GitHubConfig configures GitHub API enumeration.
type GitHubConfig struct {
	Token   string // API token (empty = unauthenticated)
	BaseURL string // API root for GitHub Enterprise (default api.github.com)
	Owner   string // Repository owner (for single repo)
	Repo    string // Repository name (for single repo)
	Org     string // Organization name (list all org repos)
	User    string // User name (list all user repos)
	Config         // Embedded base config
}

// GitHubEnumerator enumerates files on each repository's default branch
// through the GitHub API.
type GitHubEnumerator struct {
	client *github.Client
	config GitHubConfig
	log    *zap.Logger
}

// NewGitHubEnumerator creates a new GitHub API enumerator.
func NewGitHubEnumerator(cfg GitHubConfig) (*GitHubEnumerator, error) {
	if cfg.Repo == "" && cfg.Org == "" && cfg.User == "" {
		return nil, fmt.Errorf("must specify repo (with owner), org, or user")
	}
	if cfg.Repo != "" && cfg.Owner == "" {
		return nil, fmt.Errorf("owner required when repo specified")
	}

	var httpClient *http.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	client := github.NewClient(httpClient)

	if cfg.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing GitHub API URL: %w", err)
		}
		client.BaseURL = base
	}

	return &GitHubEnumerator{
		client: client,
		config: cfg,
		log:    cfg.logger(),
	}, nil
}

// Enumerate yields blobs from GitHub repositories.
func (e *GitHubEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	repos, err := e.listRepos(ctx)
	if err != nil {
		return err
	}
	e.log.Debug("listed github repositories", zap.Int("repos", len(repos)))

	for _, repo := range repos {
		if err := e.enumerateRepo(ctx, repo, callback); err != nil {
			return fmt.Errorf("enumerating %s: %w", repo.GetFullName(), err)
		}
	}
	return nil
}

// listRepos returns the repositories selected by the config.
func (e *GitHubEnumerator) listRepos(ctx context.Context) ([]*github.Repository, error) {
	if e.config.Repo != "" {
		repo, _, err := e.client.Repositories.Get(ctx, e.config.Owner, e.config.Repo)
		if err != nil {
			return nil, fmt.Errorf("getting repository: %w", err)
		}
		return []*github.Repository{repo}, nil
	}

	if e.config.Org != "" {
		opts := &github.RepositoryListByOrgOptions{
			ListOptions: github.ListOptions{PerPage: 100},
		}
		var all []*github.Repository
		for {
			repos, resp, err := e.client.Repositories.ListByOrg(ctx, e.config.Org, opts)
			if err != nil {
				return nil, fmt.Errorf("listing org repositories: %w", err)
			}
			all = append(all, repos...)
			if resp.NextPage == 0 {
				return all, nil
			}
			opts.Page = resp.NextPage
		}
	}

	opts := &github.RepositoryListOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var all []*github.Repository
	for {
		repos, resp, err := e.client.Repositories.List(ctx, e.config.User, opts)
		if err != nil {
			return nil, fmt.Errorf("listing user repositories: %w", err)
		}
		all = append(all, repos...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

// enumerateRepo yields every file in the repository's default branch.
func (e *GitHubEnumerator) enumerateRepo(ctx context.Context, repo *github.Repository, callback Callback) error {
	owner, name := repo.GetOwner().GetLogin(), repo.GetName()
	branch := repo.GetDefaultBranch()
	if branch == "" {
		branch = "main"
	}

	tree, _, err := e.client.Git.GetTree(ctx, owner, name, branch, true)
	if err != nil {
		return fmt.Errorf("getting tree: %w", err)
	}
	if tree.GetTruncated() {
		return fmt.Errorf("repository tree is truncated; clone it and scan the checkout instead")
	}

	for _, entry := range tree.Entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if entry.GetType() != "blob" {
			continue
		}
		path := entry.GetPath()
		if !e.config.IncludeHidden && hasHiddenElement(path) {
			continue
		}
		if e.config.MaxFileSize > 0 && int64(entry.GetSize()) > e.config.MaxFileSize {
			e.log.Debug("skipping large file", zap.String("repo", repo.GetFullName()), zap.String("path", path))
			continue
		}

		file, _, _, err := e.client.Repositories.GetContents(ctx, owner, name, path,
			&github.RepositoryContentGetOptions{Ref: branch})
		if err != nil || file == nil {
			e.log.Debug("skipping unreadable file", zap.String("repo", repo.GetFullName()), zap.String("path", path), zap.Error(err))
			continue
		}
		content, err := file.GetContent()
		if err != nil {
			e.log.Debug("skipping undecodable file", zap.String("path", path), zap.Error(err))
			continue
		}

		prov := types.GitProvenance{
			RepoPath: repo.GetFullName(),
			BlobPath: path,
		}
		if err := emitFile(e.config.Config, e.log, repo.GetFullName()+"/"+path, []byte(content), prov, callback); err != nil {
			return err
		}
	}
	return nil
}

// hasHiddenElement reports whether any element of a slash-separated path is hidden.
func hasHiddenElement(path string) bool {
	for _, part := range strings.Split(path, "/") {
		if isHidden(part) {
			return true
		}
	}
	return false
}
