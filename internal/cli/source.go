package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ariel-frischer/relnotes/internal/changelog"
	clierrors "github.com/ariel-frischer/relnotes/internal/errors"
	"github.com/ariel-frischer/relnotes/internal/git"
	"github.com/ariel-frischer/relnotes/internal/github"
)

// repoFlags are the flags selecting where repository data is read from.
type repoFlags struct {
	owner     string
	repo      string
	localPath string
	fetchTags bool
}

// localSource reads tags and commits from a clone and pull requests from GitHub.
type localSource struct {
	*git.Repository
	remote changelog.Source
}

func (s localSource) PullRequests(ctx context.Context, owner, repo string, from, to time.Time, max int) ([]changelog.PullRequest, error) {
	if s.remote == nil {
		return nil, fmt.Errorf("pull requests of %s/%s are not available from a local clone", owner, repo)
	}
	return s.remote.PullRequests(ctx, owner, repo, from, to, max)
}

// resolveRepository returns owner and repo from the flags, falling back to
// GITHUB_REPOSITORY for whichever is missing.
func resolveRepository(owner, repo string) (string, string, error) {
	if owner != "" && repo != "" {
		return owner, repo, nil
	}
	value := os.Getenv("GITHUB_REPOSITORY")
	if value == "" {
		return "", "", clierrors.MissingRepository()
	}
	envOwner, envRepo, ok := strings.Cut(value, "/")
	if !ok || envOwner == "" || envRepo == "" || strings.Contains(envRepo, "/") {
		return "", "", clierrors.InvalidRepository(value)
	}
	if owner == "" {
		owner = envOwner
	}
	if repo == "" {
		repo = envRepo
	}
	return owner, repo, nil
}

// resolveToTag returns the tag flag, or the tag GitHub Actions checked out.
func resolveToTag(flag string) string {
	if flag != "" {
		return flag
	}
	if tag, ok := strings.CutPrefix(os.Getenv("GITHUB_REF"), "refs/tags/"); ok {
		return tag
	}
	return ""
}

func newGitHubClient() (*github.Client, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, clierrors.MissingToken()
	}
	client, err := github.New(github.Options{
		Token:   token,
		BaseURL: os.Getenv("GITHUB_API_URL"),
		Logger:  slog.Default(),
	})
	if err != nil {
		return nil, clierrors.Wrap(err, clierrors.Configuration, "Check GITHUB_API_URL")
	}
	return client, nil
}

func openLocal(ctx context.Context, flags repoFlags) (*git.Repository, error) {
	repo, err := git.Open(flags.localPath)
	if err != nil {
		return nil, clierrors.GitNotRepository(flags.localPath)
	}
	if flags.fetchTags {
		fetchCtx, cancel := context.WithTimeout(ctx, git.DefaultFetchTimeout)
		defer cancel()
		if err := repo.FetchTags(fetchCtx); err != nil {
			slog.Warn("could not fetch tags from every remote, using local tags", "error", err)
		}
	}
	return repo, nil
}

// tagSource returns the source used for tag listings. A local clone needs
// no token.
func tagSource(ctx context.Context, flags repoFlags) (changelog.Source, error) {
	if flags.localPath != "" {
		repo, err := openLocal(ctx, flags)
		if err != nil {
			return nil, err
		}
		return localSource{Repository: repo}, nil
	}
	return newGitHubClient()
}

// releaseSource returns the source used to build release notes.
func releaseSource(ctx context.Context, flags repoFlags) (changelog.Source, error) {
	client, err := newGitHubClient()
	if err != nil {
		return nil, err
	}
	if flags.localPath == "" {
		return client, nil
	}
	repo, err := openLocal(ctx, flags)
	if err != nil {
		return nil, err
	}
	return localSource{Repository: repo, remote: client}, nil
}
