package changelog

import (
	"log/slog"
	"strings"
	"time"
)

// Commit is a single commit between two refs.
// Within a normalized collection SHA is unique and Date is non-descending.
type Commit struct {
	SHA     string
	Summary string // first line of Message
	Message string
	Author  string
	Date    time.Time
}

// NewCommit builds a Commit, deriving the summary from the first message line.
func NewCommit(sha, message, author string, date time.Time) Commit {
	return Commit{
		SHA:     sha,
		Summary: firstLine(message),
		Message: message,
		Author:  author,
		Date:    date,
	}
}

// Tag is a named ref pointing at a commit.
type Tag struct {
	Name      string
	CommitSHA string
}

// IsPreRelease reports whether the tag name carries a "-" qualifier (e.g. 1.2.0-rc1).
func (t Tag) IsPreRelease() bool {
	return strings.Contains(t.Name, "-")
}

// PullRequest is a merged pull request as seen by the changelog builder.
// Labels may be appended to by label extraction; existing order is preserved.
type PullRequest struct {
	Number             int
	Title              string
	HTMLURL            string
	MergedAt           time.Time
	MergeCommitSHA     string
	Author             string
	Labels             []string
	Milestone          string // empty when the PR has no milestone
	Body               string
	Assignees          []string
	RequestedReviewers []string
}

// DiffInfo aggregates a comparison between two refs.
type DiffInfo struct {
	ChangedFiles int
	Additions    int
	Deletions    int
	Changes      int
	Commits      int
	CommitInfo   []Commit
}

// Category groups pull requests carrying any of Labels under Title.
// A category without labels is the catch-all for unmatched pull requests.
type Category struct {
	Title  string   `koanf:"title" yaml:"title" json:"title" validate:"required"`
	Labels []string `koanf:"labels" yaml:"labels" json:"labels"`
}

// IsCatchAll reports whether the category collects uncategorized pull requests.
func (c Category) IsCatchAll() bool {
	return len(c.Labels) == 0
}

// Rule is a raw find/replace rule as it appears in configuration.
// OnProperty is only honored by label extractors.
type Rule struct {
	Pattern    string `koanf:"pattern" yaml:"pattern" json:"pattern" validate:"required"`
	Target     string `koanf:"target" yaml:"target" json:"target"`
	OnProperty string `koanf:"on_property" yaml:"on_property,omitempty" json:"on_property,omitempty"`
}

// Configuration controls how pull requests are rendered and classified.
// Zero-valued fields fall back to the values in DefaultConfiguration.
type Configuration struct {
	Sort                 string
	Template             string
	PRTemplate           string
	EmptyTemplate        string
	Categories           []Category
	IgnoreLabels         []string
	LabelExtractors      []Rule
	Transformers         []Rule
	ExcludeMergeBranches []string
	MaxTagsToFetch       int
	MaxPullRequests      int
	MaxBackTrackTimeDays int
}

// Options identifies the release the document is built for.
type Options struct {
	Owner             string
	Repo              string
	FromTag           string
	ToTag             string
	IgnorePreReleases bool
	// Since overrides the start of the pull request search window when non-zero.
	Since time.Time
	// Logger receives diagnostics; nil means slog.Default().
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
