// Package github reads tags, commit ranges and merged pull requests from the
// GitHub REST API.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v69/github"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/errgroup"

	"github.com/ariel-frischer/relnotes/internal/changelog"
)

const (
	// pageSize is the largest page the list endpoints accept.
	pageSize = 100

	// pageFetchLimit bounds concurrent page requests.
	pageFetchLimit = 4

	defaultRetryMax = 3
)

// Options configures a Client.
type Options struct {
	// Token is sent as a bearer token. Empty means unauthenticated.
	Token string
	// BaseURL overrides the API root, e.g. for GitHub Enterprise.
	BaseURL string
	// RetryMax is the number of retries for failed requests. Zero uses the default; negative disables retries.
	RetryMax int
	// RetryWaitMin is the minimum backoff between retries. Zero keeps the library default.
	RetryWaitMin time.Duration
	Logger       *slog.Logger
}

// Client implements changelog.Source over the GitHub REST API.
type Client struct {
	api    *gh.Client
	logger *slog.Logger
}

var _ changelog.Source = (*Client)(nil)

// New creates a Client whose requests are retried with exponential backoff.
func New(opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rc := retryablehttp.NewClient()
	rc.Logger = logger.With("component", "http")
	switch {
	case opts.RetryMax < 0:
		rc.RetryMax = 0
	case opts.RetryMax > 0:
		rc.RetryMax = opts.RetryMax
	default:
		rc.RetryMax = defaultRetryMax
	}
	if opts.RetryWaitMin > 0 {
		rc.RetryWaitMin = opts.RetryWaitMin
		rc.RetryWaitMax = 10 * opts.RetryWaitMin
	}

	api := gh.NewClient(rc.StandardClient())
	if opts.Token != "" {
		api = api.WithAuthToken(opts.Token)
	}
	if opts.BaseURL != "" {
		base, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parsing base URL %q: %w", opts.BaseURL, err)
		}
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		api.BaseURL = base
	}

	return &Client{api: api, logger: logger}, nil
}

// Tags lists at most max tags in the order the API returns them (newest first).
// The first page reports how many pages exist; the remaining pages needed are
// fetched concurrently.
func (c *Client) Tags(ctx context.Context, owner, repo string, max int) ([]changelog.Tag, error) {
	first, resp, err := c.api.Repositories.ListTags(ctx, owner, repo, &gh.ListOptions{PerPage: pageSize, Page: 1})
	if err != nil {
		return nil, fmt.Errorf("listing tags of %s/%s: %w", owner, repo, err)
	}

	pages := [][]*gh.RepositoryTag{first}
	wanted := (max + pageSize - 1) / pageSize
	last := min(resp.LastPage, wanted)
	if last > 1 {
		rest := make([][]*gh.RepositoryTag, last-1)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(pageFetchLimit)
		for page := 2; page <= last; page++ {
			g.Go(func() error {
				tags, _, err := c.api.Repositories.ListTags(gctx, owner, repo, &gh.ListOptions{PerPage: pageSize, Page: page})
				if err != nil {
					return fmt.Errorf("listing tags of %s/%s (page %d): %w", owner, repo, page, err)
				}
				rest[page-2] = tags
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		pages = append(pages, rest...)
	}

	var result []changelog.Tag
	for _, page := range pages {
		for _, t := range page {
			if len(result) >= max {
				break
			}
			result = append(result, changelog.Tag{Name: t.GetName(), CommitSHA: t.GetCommit().GetSHA()})
		}
	}

	c.logger.Info("fetched tags", "owner", owner, "repo", repo, "count", len(result), "max", max)
	return result, nil
}

// Diff compares base...head. The compare endpoint caps the commits it returns,
// so the head is moved to the parent of the oldest commit seen until the
// comparison comes back empty.
func (c *Client) Diff(ctx context.Context, owner, repo, base, head string) (changelog.DiffInfo, error) {
	var (
		info    changelog.DiffInfo
		commits []*gh.RepositoryCommit
	)

	compareHead := head
	for {
		if err := ctx.Err(); err != nil {
			return changelog.DiffInfo{}, err
		}

		cmp, _, err := c.api.Repositories.CompareCommits(ctx, owner, repo, base, compareHead, nil)
		if err != nil {
			return changelog.DiffInfo{}, fmt.Errorf("comparing %s...%s: %w", base, compareHead, err)
		}
		if cmp.GetTotalCommits() == 0 || len(cmp.Commits) == 0 {
			break
		}

		info.ChangedFiles += len(cmp.Files)
		for _, f := range cmp.Files {
			info.Additions += f.GetAdditions()
			info.Deletions += f.GetDeletions()
			info.Changes += f.GetChanges()
		}
		info.Commits += len(cmp.Commits)

		commits = append(append([]*gh.RepositoryCommit(nil), cmp.Commits...), commits...)
		compareHead = commits[0].GetSHA() + "^"
	}

	for _, rc := range commits {
		if rc.GetSHA() == "" {
			continue
		}
		info.CommitInfo = append(info.CommitInfo, changelog.NewCommit(
			rc.GetSHA(),
			rc.GetCommit().GetMessage(),
			rc.GetCommit().GetAuthor().GetName(),
			rc.GetCommit().GetCommitter().GetDate().Time,
		))
	}
	info.CommitInfo = changelog.NormalizeCommits(info.CommitInfo)

	c.logger.Info("fetched commits", "owner", owner, "repo", repo, "base", base, "head", head,
		"count", len(info.CommitInfo))
	return info, nil
}

// PullRequests lists closed pull requests merged within [from, to], most
// recently updated first, stopping after max matches or once the listing
// reaches pull requests last updated before from.
func (c *Client) PullRequests(ctx context.Context, owner, repo string, from, to time.Time, max int) ([]changelog.PullRequest, error) {
	opts := &gh.PullRequestListOptions{
		State:       "closed",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: pageSize},
	}

	var result []changelog.PullRequest
	for {
		prs, resp, err := c.api.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing pull requests of %s/%s: %w", owner, repo, err)
		}

		for _, pr := range prs {
			if pr.GetUpdatedAt().Time.Before(from) {
				c.logger.Info("fetched pull requests", "owner", owner, "repo", repo, "count", len(result))
				return result, nil
			}
			merged := pr.GetMergedAt().Time
			if merged.IsZero() || merged.Before(from) || merged.After(to) {
				continue
			}
			result = append(result, convertPullRequest(pr))
			if len(result) >= max {
				c.logger.Info("fetched pull requests", "owner", owner, "repo", repo, "count", len(result), "max", max)
				return result, nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	c.logger.Info("fetched pull requests", "owner", owner, "repo", repo, "count", len(result))
	return result, nil
}

func convertPullRequest(pr *gh.PullRequest) changelog.PullRequest {
	result := changelog.PullRequest{
		Number:         pr.GetNumber(),
		Title:          pr.GetTitle(),
		HTMLURL:        pr.GetHTMLURL(),
		MergedAt:       pr.GetMergedAt().Time,
		MergeCommitSHA: pr.GetMergeCommitSHA(),
		Author:         pr.GetUser().GetLogin(),
		Milestone:      pr.GetMilestone().GetTitle(),
		Body:           pr.GetBody(),
	}
	for _, l := range pr.Labels {
		result.Labels = append(result.Labels, l.GetName())
	}
	result.Assignees = logins(pr.Assignees)
	result.RequestedReviewers = logins(pr.RequestedReviewers)
	return result
}

func logins(users []*gh.User) []string {
	var out []string
	for _, u := range users {
		out = append(out, u.GetLogin())
	}
	return out
}
