package publish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-github/v59/github"

	"triad/pkg/logx"
)

// GitHubConfig describes where the GitHub publisher commits the artifact.
type GitHubConfig struct {
	Token  string
	Repo   string // owner/name
	Branch string // empty means the repository default branch
	Path   string // path inside the repository; empty means the artifact's base name
}

// GitHubPublisher commits the artifact through the repository contents API.
type GitHubPublisher struct {
	client *github.Client
	logger *logx.Logger
	owner  string
	repo   string
	branch string
	path   string
}

// NewGitHubPublisher creates a publisher from cfg.
func NewGitHubPublisher(cfg GitHubConfig) (*GitHubPublisher, error) {
	owner, repo, ok := strings.Cut(cfg.Repo, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("github repo must be owner/name, got %q", cfg.Repo)
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("github token is required")
	}
	return &GitHubPublisher{
		client: github.NewClient(nil).WithAuthToken(cfg.Token),
		owner:  owner,
		repo:   repo,
		branch: cfg.Branch,
		path:   cfg.Path,
		logger: logx.NewLogger("publish"),
	}, nil
}

// Publish creates or updates the file in the repository with the artifact's contents.
func (p *GitHubPublisher) Publish(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read artifact %s: %w", path, err)
	}

	target := p.path
	if target == "" {
		target = filepath.Base(path)
	}

	var getOpts *github.RepositoryContentGetOptions
	if p.branch != "" {
		getOpts = &github.RepositoryContentGetOptions{Ref: p.branch}
	}

	existing, _, resp, err := p.client.Repositories.GetContents(ctx, p.owner, p.repo, target, getOpts)
	if err != nil && !isNotFound(resp, err) {
		return fmt.Errorf("failed to look up %s in %s/%s: %w", target, p.owner, p.repo, err)
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.String(fmt.Sprintf("Update %s", target)),
		Content: data,
	}
	if p.branch != "" {
		opts.Branch = github.String(p.branch)
	}

	if existing != nil && existing.SHA != nil {
		opts.SHA = existing.SHA
		_, _, err = p.client.Repositories.UpdateFile(ctx, p.owner, p.repo, target, opts)
	} else {
		opts.Message = github.String(fmt.Sprintf("Add %s", target))
		_, _, err = p.client.Repositories.CreateFile(ctx, p.owner, p.repo, target, opts)
	}
	if err != nil {
		return fmt.Errorf("failed to commit %s to %s/%s: %w", target, p.owner, p.repo, err)
	}

	p.logger.Info("Committed %s to %s/%s", target, p.owner, p.repo)
	return nil
}

func isNotFound(resp *github.Response, err error) bool {
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return true
	}
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}
