// Package git reads tags and commit history from a local clone. It uses the
// go-git library, so no git installation is required.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/ariel-frischer/relnotes/internal/changelog"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// DefaultFetchTimeout bounds FetchTags when the caller passes no deadline.
const DefaultFetchTimeout = 60 * time.Second

// Repository is a local clone used as a tag and commit history source.
// It serves the Tags and Diff halves of changelog.Source; pull requests
// only exist on the hosting service.
type Repository struct {
	repo *git.Repository
}

// Open opens the repository containing path. The directory tree is walked
// upwards to find the .git directory. An empty path means the working directory.
func Open(path string) (*Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	logDebug("[git] repository opened successfully")
	return &Repository{repo: repo}, nil
}

// FromRepository wraps an already opened go-git repository.
func FromRepository(repo *git.Repository) *Repository {
	return &Repository{repo: repo}
}

// Tags returns at most max tags, ordered by the date of the commit they
// point to, newest first. Annotated tags are peeled to their commit.
// owner and repo are ignored.
func (r *Repository) Tags(ctx context.Context, _, _ string, max int) ([]changelog.Tag, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	type datedTag struct {
		tag  changelog.Tag
		when time.Time
	}
	var dated []datedTag

	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		commit, err := r.peel(ref.Hash())
		if err != nil {
			logDebug("[git] skipping tag %s: %v", ref.Name().Short(), err)
			return nil
		}
		dated = append(dated, datedTag{
			tag:  changelog.Tag{Name: ref.Name().Short(), CommitSHA: commit.Hash.String()},
			when: commit.Committer.When,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	sort.SliceStable(dated, func(i, j int) bool {
		if dated[i].when.Equal(dated[j].when) {
			return dated[i].tag.Name > dated[j].tag.Name
		}
		return dated[i].when.After(dated[j].when)
	})

	tags := make([]changelog.Tag, 0, min(len(dated), max))
	for _, d := range dated {
		if len(tags) >= max {
			break
		}
		tags = append(tags, d.tag)
	}

	logDebug("[git] Tags: found %d tags, returning %d", len(dated), len(tags))
	return tags, nil
}

// peel resolves a tag reference hash to the commit it names.
func (r *Repository) peel(hash plumbing.Hash) (*object.Commit, error) {
	tagObj, err := r.repo.TagObject(hash)
	switch {
	case err == nil:
		return tagObj.Commit()
	case errors.Is(err, plumbing.ErrObjectNotFound):
		return r.repo.CommitObject(hash)
	default:
		return nil, err
	}
}

// Diff returns the commits reachable from head but not from base, along
// with line statistics of the tree change between the two.
// owner and repo are ignored.
func (r *Repository) Diff(ctx context.Context, _, _, base, head string) (changelog.DiffInfo, error) {
	baseCommit, err := r.resolve(base)
	if err != nil {
		return changelog.DiffInfo{}, err
	}
	headCommit, err := r.resolve(head)
	if err != nil {
		return changelog.DiffInfo{}, err
	}

	excluded := make(map[plumbing.Hash]bool)
	err = object.NewCommitPreorderIter(baseCommit, nil, nil).ForEach(func(c *object.Commit) error {
		excluded[c.Hash] = true
		return ctx.Err()
	})
	if err != nil {
		return changelog.DiffInfo{}, fmt.Errorf("walking history of %s: %w", base, err)
	}

	var commits []changelog.Commit
	err = object.NewCommitPreorderIter(headCommit, excluded, nil).ForEach(func(c *object.Commit) error {
		commits = append(commits, changelog.NewCommit(c.Hash.String(), c.Message, c.Author.Name, c.Committer.When))
		return ctx.Err()
	})
	if err != nil {
		return changelog.DiffInfo{}, fmt.Errorf("walking history of %s: %w", head, err)
	}

	info := changelog.DiffInfo{Commits: len(commits), CommitInfo: changelog.NormalizeCommits(commits)}

	patch, err := baseCommit.PatchContext(ctx, headCommit)
	if err != nil {
		return changelog.DiffInfo{}, fmt.Errorf("diffing %s...%s: %w", base, head, err)
	}
	for _, stat := range patch.Stats() {
		info.ChangedFiles++
		info.Additions += stat.Addition
		info.Deletions += stat.Deletion
		info.Changes += stat.Addition + stat.Deletion
	}

	logDebug("[git] Diff %s...%s: %d commits, %d files", base, head, info.Commits, info.ChangedFiles)
	return info, nil
}

// resolve finds the commit named by a tag, branch or hash.
func (r *Repository) resolve(rev string) (*object.Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", rev, err)
	}
	commit, err := r.peel(*hash)
	if err != nil {
		return nil, fmt.Errorf("reading commit %s: %w", rev, err)
	}
	return commit, nil
}

// FetchTags fetches tags from every configured remote so that tags created on
// the hosting service are visible locally. It continues past failing remotes
// and returns their errors joined. A canceled or expired context stops the
// fetch without an error.
func (r *Repository) FetchTags(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		logDebug("[git] FetchTags: context already cancelled")
		return nil
	}

	remotes, err := r.repo.Remotes()
	if err != nil {
		logDebug("[git] FetchTags: no remotes: %v", err)
		return nil
	}
	if len(remotes) == 0 {
		logDebug("[git] FetchTags: no remotes configured")
		return nil
	}

	var errs []error
	for _, remote := range remotes {
		if err := ctx.Err(); err != nil {
			logDebug("[git] FetchTags: context cancelled, stopping fetch")
			break
		}
		if err := r.fetchRemoteTags(ctx, remote); err != nil {
			logDebug("[git] failed to fetch tags from remote '%s': %v", remote.Config().Name, err)
			errs = append(errs, fmt.Errorf("fetching tags from %s: %w", remote.Config().Name, err))
		}
	}

	logDebug("[git] FetchTags: completed, %d remote(s) failed", len(errs))
	return errors.Join(errs...)
}

func (r *Repository) fetchRemoteTags(ctx context.Context, remote *git.Remote) error {
	remoteConfig := remote.Config()
	if len(remoteConfig.URLs) == 0 {
		return nil
	}

	url := remoteConfig.URLs[0]
	if isSSHURL(url) && !isSSHAgentAvailable() {
		logDebug("[git] skipping fetch from remote '%s': SSH URL without SSH agent available", remoteConfig.Name)
		return nil
	}

	logDebug("[git] fetching tags from remote '%s' (%s)", remoteConfig.Name, url)
	err := r.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remoteConfig.Name,
		Auth:       getAuthForURL(url),
		Tags:       git.AllTags,
		RefSpecs:   []config.RefSpec{"+refs/tags/*:refs/tags/*"},
	})

	if ctx.Err() != nil {
		logDebug("[git] fetch from remote '%s' timed out or cancelled", remoteConfig.Name)
		return nil
	}
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}

// getAuthForURL returns SSH agent auth for SSH remotes and token or
// username/password basic auth from the environment for HTTPS remotes.
func getAuthForURL(url string) transport.AuthMethod {
	if isSSHURL(url) {
		auth, err := ssh.NewSSHAgentAuth("git")
		if err != nil {
			logDebug("[git] SSH agent auth failed: %v", err)
			return nil
		}
		return auth
	}

	username := os.Getenv("GIT_USERNAME")
	password := os.Getenv("GIT_PASSWORD")
	if username == "" {
		if token := os.Getenv("GITHUB_TOKEN"); token != "" {
			// GitHub accepts any non-empty username alongside a token.
			username, password = "x-access-token", token
		}
	}

	if username != "" {
		return &http.BasicAuth{
			Username: username,
			Password: password,
		}
	}

	return nil
}

// isSSHURL detects git@ (SCP-style), ssh:// and git+ssh:// remotes.
func isSSHURL(url string) bool {
	return strings.HasPrefix(url, "git@") ||
		strings.HasPrefix(url, "ssh://") ||
		strings.HasPrefix(url, "git+ssh://")
}

func isSSHAgentAvailable() bool {
	return strings.TrimSpace(os.Getenv("SSH_AUTH_SOCK")) != ""
}
