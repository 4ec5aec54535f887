// Package githubrepo commits content files to a GitHub repository and reads its contributors.
package githubrepo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"
	"github.com/rs/zerolog"
)

// Config contains the repository coordinates and credentials.
type Config struct {
	Token   string
	Owner   string
	Repo    string
	Branch  string
	BaseURL string
}

// File is a file read from the repository.
type File struct {
	Path    string
	SHA     string
	Content []byte
	URL     string
}

// FileWrite creates a file, or updates it when SHA is set.
type FileWrite struct {
	Path    string
	Message string
	Content []byte
	SHA     string
}

// FileDelete removes a file at a known SHA.
type FileDelete struct {
	Path    string
	Message string
	SHA     string
}

// Commit identifies the commit produced by a write.
type Commit struct {
	SHA string
	URL string
}

// Contributor is a repository contributor as reported by GitHub.
type Contributor struct {
	ID            int64
	Login         string
	AvatarURL     string
	ProfileURL    string
	Type          string
	Contributions int
}

// Activity holds search-derived counts for one contributor.
type Activity struct {
	PullRequests int
	Issues       int
}

// Client talks to the GitHub REST API.
type Client struct {
	gh     *github.Client
	owner  string
	repo   string
	branch string
	logger zerolog.Logger
}

// New constructs a client. BaseURL overrides the API endpoint for GitHub Enterprise and tests.
func New(cfg Config, httpClient *http.Client, logger zerolog.Logger) (*Client, error) {
	if cfg.Token == "" || cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("github token, owner and repo must be provided")
	}

	gh := github.NewClient(httpClient).WithAuthToken(cfg.Token)
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		parsed, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid github base url: %w", err)
		}
		gh.BaseURL = parsed
	}

	branch := cfg.Branch
	if branch == "" {
		branch = "main"
	}

	return &Client{
		gh:     gh,
		owner:  cfg.Owner,
		repo:   cfg.Repo,
		branch: branch,
		logger: logger.With().Str("component", "github_repo").Logger(),
	}, nil
}

// GetFile fetches a file. The boolean is false when the path does not exist.
func (c *Client) GetFile(ctx context.Context, path string) (File, bool, error) {
	content, _, resp, err := c.gh.Repositories.GetContents(ctx, c.owner, c.repo, path, &github.RepositoryContentGetOptions{Ref: c.branch})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return File{}, false, nil
		}
		return File{}, false, fmt.Errorf("get %s: %w", path, err)
	}
	if content == nil {
		return File{}, false, fmt.Errorf("get %s: path is a directory", path)
	}

	decoded, err := content.GetContent()
	if err != nil {
		return File{}, false, fmt.Errorf("decode %s: %w", path, err)
	}

	return File{
		Path:    content.GetPath(),
		SHA:     content.GetSHA(),
		Content: []byte(decoded),
		URL:     content.GetHTMLURL(),
	}, true, nil
}

// PutFile creates or updates a file in a single commit.
func (c *Client) PutFile(ctx context.Context, write FileWrite) (Commit, error) {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(write.Message),
		Content: write.Content,
		Branch:  github.String(c.branch),
	}

	var (
		result *github.RepositoryContentResponse
		err    error
	)
	if write.SHA == "" {
		result, _, err = c.gh.Repositories.CreateFile(ctx, c.owner, c.repo, write.Path, opts)
	} else {
		opts.SHA = github.String(write.SHA)
		result, _, err = c.gh.Repositories.UpdateFile(ctx, c.owner, c.repo, write.Path, opts)
	}
	if err != nil {
		return Commit{}, describe(err)
	}

	commit := Commit{SHA: result.Commit.GetSHA(), URL: result.Commit.GetHTMLURL()}
	c.logger.Info().Str("path", write.Path).Str("sha", commit.SHA).Msg("file committed")
	return commit, nil
}

// DeleteFile removes a file in a single commit.
func (c *Client) DeleteFile(ctx context.Context, del FileDelete) (Commit, error) {
	result, _, err := c.gh.Repositories.DeleteFile(ctx, c.owner, c.repo, del.Path, &github.RepositoryContentFileOptions{
		Message: github.String(del.Message),
		SHA:     github.String(del.SHA),
		Branch:  github.String(c.branch),
	})
	if err != nil {
		return Commit{}, describe(err)
	}

	commit := Commit{SHA: result.Commit.GetSHA(), URL: result.Commit.GetHTMLURL()}
	c.logger.Info().Str("path", del.Path).Str("sha", commit.SHA).Msg("file deleted")
	return commit, nil
}

// ListContributors returns every contributor across all result pages.
func (c *Client) ListContributors(ctx context.Context) ([]Contributor, error) {
	opts := &github.ListContributorsOptions{ListOptions: github.ListOptions{PerPage: 100}}
	var contributors []Contributor
	for {
		page, resp, err := c.gh.Repositories.ListContributors(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, describe(err)
		}
		for _, item := range page {
			contributors = append(contributors, Contributor{
				ID:            item.GetID(),
				Login:         item.GetLogin(),
				AvatarURL:     item.GetAvatarURL(),
				ProfileURL:    item.GetHTMLURL(),
				Type:          item.GetType(),
				Contributions: item.GetContributions(),
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return contributors, nil
}

// Activity counts the pull requests and issues login authored in the repository.
func (c *Client) Activity(ctx context.Context, login string) (Activity, error) {
	prs, err := c.countIssues(ctx, login, "pr")
	if err != nil {
		return Activity{}, err
	}
	issues, err := c.countIssues(ctx, login, "issue")
	if err != nil {
		return Activity{}, err
	}
	return Activity{PullRequests: prs, Issues: issues}, nil
}

func (c *Client) countIssues(ctx context.Context, login, kind string) (int, error) {
	query := fmt.Sprintf("repo:%s/%s author:%s type:%s", c.owner, c.repo, login, kind)
	result, _, err := c.gh.Search.Issues(ctx, query, &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 1}})
	if err != nil {
		return 0, describe(err)
	}
	return result.GetTotal(), nil
}

func describe(err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return fmt.Errorf("github %d: %s", ghErr.Response.StatusCode, ghErr.Message)
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("github rate limit exceeded: %w", err)
	}
	return err
}
