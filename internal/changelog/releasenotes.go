package changelog

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNoPredecessor is returned when no from-tag was given and none could be resolved.
var ErrNoPredecessor = errors.New("could not resolve a predecessor tag")

// Source provides repository history. Implementations handle pagination and
// retries; the changelog builder only consumes what they return.
type Source interface {
	// Tags returns at most max tags, newest first.
	Tags(ctx context.Context, owner, repo string, max int) ([]Tag, error)
	// Diff compares base...head and returns the normalized commits between them.
	Diff(ctx context.Context, owner, repo, base, head string) (DiffInfo, error)
	// PullRequests returns at most max pull requests merged within [from, to].
	PullRequests(ctx context.Context, owner, repo string, from, to time.Time, max int) ([]PullRequest, error)
}

// ReleaseNotes builds the release notes document for one tag range.
type ReleaseNotes struct {
	Source  Source
	Config  Configuration
	Options Options
	// Now returns the current time; nil means time.Now.
	Now func() time.Time
}

// Snapshot holds the pull requests collected for one tag range.
// Rendering a snapshot needs no further access to the Source.
type Snapshot struct {
	Options      Options
	PullRequests []PullRequest
}

// Build collects the pull requests for the tag range and renders them.
func (r *ReleaseNotes) Build(ctx context.Context) (string, error) {
	snapshot, err := r.Collect(ctx)
	if err != nil {
		return "", err
	}
	return snapshot.Render(r.Config), nil
}

// Collect resolves the tag range and fetches the merged pull requests whose
// merge commits lie in it.
func (r *ReleaseNotes) Collect(ctx context.Context) (Snapshot, error) {
	config := r.Config.WithDefaults()
	opts, err := r.ResolvedOptions(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	opts.logger().Info("building release notes", "owner", opts.Owner, "repo", opts.Repo,
		"from", opts.FromTag, "to", opts.ToTag)

	prs, err := r.mergedPullRequests(ctx, config, opts)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Options: opts, PullRequests: prs}, nil
}

// Render builds the document for the snapshot. When nothing was merged the
// empty template is returned.
func (s Snapshot) Render(config Configuration) string {
	config = config.WithDefaults()
	if len(s.PullRequests) == 0 {
		s.Options.logger().Warn("no pull requests found in range, using empty template")
		return FillAdditionalPlaceholders(config.EmptyTemplate, s.Options)
	}
	return BuildChangelog(s.PullRequests, config, s.Options)
}

// ResolvedOptions returns the options with FromTag filled in by predecessor
// resolution when it was left empty.
func (r *ReleaseNotes) ResolvedOptions(ctx context.Context) (Options, error) {
	opts := r.Options
	if opts.FromTag != "" {
		return opts, nil
	}
	from, err := r.resolveFromTag(ctx, r.Config.WithDefaults())
	if err != nil {
		return opts, err
	}
	opts.FromTag = from
	return opts, nil
}

func (r *ReleaseNotes) resolveFromTag(ctx context.Context, config Configuration) (string, error) {
	opts := r.Options
	tags, err := r.Source.Tags(ctx, opts.Owner, opts.Repo, config.MaxTagsToFetch)
	if err != nil {
		return "", fmt.Errorf("fetching tags: %w", err)
	}

	tag, ok := FindPredecessor(tags, opts.ToTag, opts.IgnorePreReleases, opts.logger())
	if !ok {
		return "", fmt.Errorf("%w for %s", ErrNoPredecessor, opts.ToTag)
	}
	opts.logger().Info("resolved predecessor tag", "tag", opts.ToTag, "predecessor", tag.Name)
	return tag.Name, nil
}

// mergedPullRequests fetches the pull requests merged between the first and
// last commit of the range and keeps those whose merge commit is in it.
func (r *ReleaseNotes) mergedPullRequests(ctx context.Context, config Configuration, opts Options) ([]PullRequest, error) {
	logger := opts.logger()

	diff, err := r.Source.Diff(ctx, opts.Owner, opts.Repo, opts.FromTag, opts.ToTag)
	if err != nil {
		return nil, fmt.Errorf("comparing %s...%s: %w", opts.FromTag, opts.ToTag, err)
	}

	commits := FilterCommits(NormalizeCommits(diff.CommitInfo), config.ExcludeMergeBranches)
	logger.Info("collected commits", "total", len(diff.CommitInfo), "kept", len(commits),
		"additions", diff.Additions, "deletions", diff.Deletions)
	if len(commits) == 0 {
		return nil, nil
	}

	from, to := r.window(commits, config, opts)
	prs, err := r.Source.PullRequests(ctx, opts.Owner, opts.Repo, from, to, config.MaxPullRequests)
	if err != nil {
		return nil, fmt.Errorf("fetching pull requests: %w", err)
	}

	shas := make(map[string]bool, len(commits))
	for _, c := range commits {
		shas[c.SHA] = true
	}

	kept := make([]PullRequest, 0, len(prs))
	for _, pr := range prs {
		if shas[pr.MergeCommitSHA] {
			kept = append(kept, pr)
		}
	}
	logger.Info("matched pull requests to commits", "fetched", len(prs), "kept", len(kept))
	return kept, nil
}

// window returns the merge-time range to search, bounded by the back-track limit.
func (r *ReleaseNotes) window(commits []Commit, config Configuration, opts Options) (time.Time, time.Time) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	from := commits[0].Date
	to := commits[len(commits)-1].Date

	earliest := now().AddDate(0, 0, -config.MaxBackTrackTimeDays)
	if from.Before(earliest) {
		opts.logger().Warn("commit range exceeds back-track limit, clamping",
			"from", from, "limit_days", config.MaxBackTrackTimeDays)
		from = earliest
	}
	if !opts.Since.IsZero() {
		from = opts.Since
	}
	return from, to
}
