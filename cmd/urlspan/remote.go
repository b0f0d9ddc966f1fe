package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/praetorian-inc/urlspan/pkg/enum"
)

var (
	githubRepo  string
	githubOrg   string
	githubUser  string
	githubToken string
	githubURL   string

	gitlabProject string
	gitlabGroup   string
	gitlabUser    string
	gitlabToken   string
	gitlabURL     string
)

func init() {
	f := scanCmd.Flags()
	f.StringVar(&githubRepo, "github", "", "Scan a GitHub repository (owner/repo) through the API")
	f.StringVar(&githubOrg, "github-org", "", "Scan all repositories in a GitHub organization")
	f.StringVar(&githubUser, "github-user", "", "Scan all repositories of a GitHub user")
	f.StringVar(&githubToken, "github-token", "", "GitHub API token (or GITHUB_TOKEN env; optional for public repos)")
	f.StringVar(&githubURL, "github-url", "", "GitHub API base URL (default: api.github.com)")

	f.StringVar(&gitlabProject, "gitlab", "", "Scan a GitLab project (namespace/project) through the API")
	f.StringVar(&gitlabGroup, "gitlab-group", "", "Scan all projects in a GitLab group")
	f.StringVar(&gitlabUser, "gitlab-user", "", "Scan all projects owned by a GitLab user")
	f.StringVar(&gitlabToken, "gitlab-token", "", "GitLab token (or GITLAB_TOKEN env; optional for public projects)")
	f.StringVar(&gitlabURL, "gitlab-url", "", "GitLab base URL (default: gitlab.com)")
}

// remoteEnumerator returns the GitHub or GitLab enumerator selected by flags,
// or nil when the scan reads a local target.
func remoteEnumerator() (enum.Enumerator, error) {
	useGitHub := githubRepo != "" || githubOrg != "" || githubUser != ""
	useGitLab := gitlabProject != "" || gitlabGroup != "" || gitlabUser != ""
	if !useGitHub && !useGitLab {
		return nil, nil
	}
	if useGitHub && useGitLab {
		return nil, fmt.Errorf("--github and --gitlab sources cannot be combined")
	}
	if scanGit {
		return nil, fmt.Errorf("--git applies to local repositories only")
	}

	base := enum.Config{
		IncludeHidden: scanIncludeHidden,
		MaxFileSize:   scanMaxFileSize,
		Extract:       scanExtract,
		Logger:        logger.Named("enum"),
	}

	if useGitLab {
		e, err := enum.NewGitLabEnumerator(enum.GitLabConfig{
			Token:   firstNonEmpty(gitlabToken, os.Getenv("GITLAB_TOKEN")),
			BaseURL: gitlabURL,
			Project: gitlabProject,
			Group:   gitlabGroup,
			User:    gitlabUser,
			Config:  base,
		})
		if err != nil {
			return nil, err
		}
		return e, nil
	}

	var owner, repo string
	if githubRepo != "" {
		var ok bool
		owner, repo, ok = strings.Cut(githubRepo, "/")
		if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
			return nil, fmt.Errorf("invalid repository %q, expected owner/repo", githubRepo)
		}
	}
	e, err := enum.NewGitHubEnumerator(enum.GitHubConfig{
		Token:   firstNonEmpty(githubToken, os.Getenv("GITHUB_TOKEN")),
		BaseURL: githubURL,
		Owner:   owner,
		Repo:    repo,
		Org:     githubOrg,
		User:    githubUser,
		Config:  base,
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
