package changelog

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Pull request template placeholders.
const (
	PlaceholderNumber    = "NUMBER"
	PlaceholderTitle     = "TITLE"
	PlaceholderURL       = "URL"
	PlaceholderMergedAt  = "MERGED_AT"
	PlaceholderAuthor    = "AUTHOR"
	PlaceholderLabels    = "LABELS"
	PlaceholderMilestone = "MILESTONE"
	PlaceholderBody      = "BODY"
	PlaceholderAssignees = "ASSIGNEES"
	PlaceholderReviewers = "REVIEWERS"
)

// Document template placeholders.
const (
	PlaceholderChangelog          = "CHANGELOG"
	PlaceholderUncategorized      = "UNCATEGORIZED"
	PlaceholderIgnored            = "IGNORED"
	PlaceholderCategorizedCount   = "CATEGORIZED_COUNT"
	PlaceholderUncategorizedCount = "UNCATEGORIZED_COUNT"
	PlaceholderIgnoredCount       = "IGNORED_COUNT"
	PlaceholderOwner              = "OWNER"
	PlaceholderRepo               = "REPO"
	PlaceholderFromTag            = "FROM_TAG"
	PlaceholderToTag              = "TO_TAG"
)

// mergedAtLayout matches JavaScript's Date.toISOString.
const mergedAtLayout = "2006-01-02T15:04:05.000Z"

// FillTemplate renders a pull request into template. Unknown placeholders are left as is.
func FillTemplate(pr PullRequest, template string) string {
	fields := []struct {
		name  string
		value string
	}{
		{PlaceholderNumber, strconv.Itoa(pr.Number)},
		{PlaceholderTitle, pr.Title},
		{PlaceholderURL, pr.HTMLURL},
		{PlaceholderMergedAt, formatMergedAt(pr.MergedAt)},
		{PlaceholderAuthor, pr.Author},
		{PlaceholderLabels, strings.Join(pr.Labels, ", ")},
		{PlaceholderMilestone, pr.Milestone},
		{PlaceholderBody, pr.Body},
		{PlaceholderAssignees, strings.Join(pr.Assignees, ", ")},
		{PlaceholderReviewers, strings.Join(pr.RequestedReviewers, ", ")},
	}

	text := template
	for _, f := range fields {
		text = ReplacePlaceholder(text, f.name, f.value)
	}
	return text
}

// FillAdditionalPlaceholders fills the owner, repo and tag placeholders.
func FillAdditionalPlaceholders(text string, opts Options) string {
	text = ReplacePlaceholder(text, PlaceholderOwner, opts.Owner)
	text = ReplacePlaceholder(text, PlaceholderRepo, opts.Repo)
	text = ReplacePlaceholder(text, PlaceholderFromTag, opts.FromTag)
	text = ReplacePlaceholder(text, PlaceholderToTag, opts.ToTag)
	return text
}

// placeholderPatterns caches the compiled pattern for each placeholder name.
var placeholderPatterns sync.Map

// ReplacePlaceholder replaces every ${{name}} and {{name}} in text with value.
// The value is inserted literally and is not scanned again.
func ReplacePlaceholder(text, name, value string) string {
	if !strings.Contains(text, "{{"+name+"}}") {
		return text
	}
	return placeholderPattern(name).ReplaceAllLiteralString(text, value)
}

func placeholderPattern(name string) *regexp.Regexp {
	if re, ok := placeholderPatterns.Load(name); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`\$?\{\{` + regexp.QuoteMeta(name) + `\}\}`)
	placeholderPatterns.Store(name, re)
	return re
}

func formatMergedAt(t time.Time) string {
	return t.UTC().Format(mergedAtLayout)
}
