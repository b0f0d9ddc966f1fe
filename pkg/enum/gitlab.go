package enum

import (
	"context"
	"fmt"

	"gitlab.com/gitlab-org/api/client-go"
	"go.uber.org/zap"

	"github.com/praetorian-inc/urlspan/pkg/types"
)

// GitLabConfig for GitLab API enumeration.
type GitLabConfig struct {
	Token   string
	BaseURL string // Optional, defaults to gitlab.com
	Project string // Single project path (namespace/project) or numeric ID
	Group   string // Group name (optional)
	User    string // User name (optional)
	Config         // Embedded base Config
}

// GitLabEnumerator enumerates files on each project's default branch via the
// GitLab API.
type GitLabEnumerator struct {
	client *gitlab.Client
	config GitLabConfig
	log    *zap.Logger
}

// NewGitLabEnumerator creates a new GitLab enumerator.
func NewGitLabEnumerator(cfg GitLabConfig) (*GitLabEnumerator, error) {
	if cfg.Project == "" && cfg.Group == "" && cfg.User == "" {
		return nil, fmt.Errorf("must specify project, group, or user")
	}

	var opts []gitlab.ClientOptionFunc
	if cfg.BaseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(cfg.BaseURL))
	}
	client, err := gitlab.NewClient(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating GitLab client: %w", err)
	}

	return &GitLabEnumerator{client: client, config: cfg, log: cfg.logger()}, nil
}

// Enumerate walks GitLab projects and yields their files.
func (e *GitLabEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	projects, err := e.listProjects(ctx)
	if err != nil {
		return err
	}
	e.log.Debug("listed gitlab projects", zap.Int("projects", len(projects)))

	for _, project := range projects {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := e.enumerateProject(ctx, project, callback); err != nil {
			return fmt.Errorf("enumerating %s: %w", project.PathWithNamespace, err)
		}
	}
	return nil
}

// listProjects returns the projects selected by the config.
func (e *GitLabEnumerator) listProjects(ctx context.Context) ([]*gitlab.Project, error) {
	if e.config.Project != "" {
		project, _, err := e.client.Projects.GetProject(e.config.Project, nil, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("getting project: %w", err)
		}
		return []*gitlab.Project{project}, nil
	}

	if e.config.Group != "" {
		opts := &gitlab.ListGroupProjectsOptions{
			ListOptions: gitlab.ListOptions{PerPage: 100},
		}
		var all []*gitlab.Project
		for {
			projects, resp, err := e.client.Groups.ListGroupProjects(e.config.Group, opts, gitlab.WithContext(ctx))
			if err != nil {
				return nil, fmt.Errorf("listing group projects: %w", err)
			}
			all = append(all, projects...)
			if resp.NextPage == 0 {
				return all, nil
			}
			opts.Page = resp.NextPage
		}
	}

	opts := &gitlab.ListProjectsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
		Owned:       gitlab.Ptr(true),
	}
	var all []*gitlab.Project
	for {
		projects, resp, err := e.client.Projects.ListUserProjects(e.config.User, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("listing user projects: %w", err)
		}
		all = append(all, projects...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

// enumerateProject walks a single project's file tree.
func (e *GitLabEnumerator) enumerateProject(ctx context.Context, project *gitlab.Project, callback Callback) error {
	var ref *string
	if project.DefaultBranch != "" {
		ref = gitlab.Ptr(project.DefaultBranch)
	}

	opts := &gitlab.ListTreeOptions{
		Recursive:   gitlab.Ptr(true),
		Ref:         ref,
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}
	var nodes []*gitlab.TreeNode
	for {
		page, resp, err := e.client.Repositories.ListTree(project.ID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("listing tree: %w", err)
		}
		nodes = append(nodes, page...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	for _, node := range nodes {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if node.Type != "blob" {
			continue
		}
		if !e.config.IncludeHidden && hasHiddenElement(node.Path) {
			continue
		}

		content, _, err := e.client.RepositoryFiles.GetRawFile(project.ID, node.Path,
			&gitlab.GetRawFileOptions{Ref: ref}, gitlab.WithContext(ctx))
		if err != nil {
			e.log.Debug("skipping unreadable file",
				zap.String("project", project.PathWithNamespace),
				zap.String("path", node.Path),
				zap.Error(err))
			continue
		}

		// The tree API carries no sizes, so the limit applies after download.
		if e.config.MaxFileSize > 0 && int64(len(content)) > e.config.MaxFileSize {
			e.log.Debug("skipping large file", zap.String("path", node.Path), zap.Int("size", len(content)))
			continue
		}

		prov := types.GitProvenance{
			RepoPath: project.PathWithNamespace,
			BlobPath: node.Path,
		}
		if err := emitFile(e.config.Config, e.log, project.PathWithNamespace+"/"+node.Path, content, prov, callback); err != nil {
			return err
		}
	}
	return nil
}
