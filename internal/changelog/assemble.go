package changelog

import (
	"sort"
	"strconv"
	"strings"
)

// renderedPR pairs a pull request with its transformed text.
type renderedPR struct {
	pr   *PullRequest
	text string
}

// classification is the result of sorting rendered pull requests into buckets.
// Categories holds one bucket per configured category, in configured order.
type classification struct {
	Categories    [][]string
	Categorized   []string
	Uncategorized []string
	Ignored       []string
}

// SortPullRequests orders prs by merge time, ascending or descending.
// Pull requests merged at the same instant keep their relative order.
func SortPullRequests(prs []PullRequest, ascending bool) []PullRequest {
	sort.SliceStable(prs, func(i, j int) bool {
		if ascending {
			return prs[i].MergedAt.Before(prs[j].MergedAt)
		}
		return prs[j].MergedAt.Before(prs[i].MergedAt)
	})
	return prs
}

// BuildChangelog renders prs into the document described by config.
//
// The pull requests are sorted, enriched with extracted labels, rendered with
// the pull request template and transformed. Each is then placed in every
// category it shares a label with; unmatched ones go to the catch-all
// category (if any) and the uncategorized list, and ones carrying an ignored
// label go only to the ignored list.
//
// prs is not modified, so building twice from the same input yields the same document.
func BuildChangelog(prs []PullRequest, config Configuration, opts Options) string {
	logger := opts.logger()
	config = config.WithDefaults()
	prs = clonePullRequests(prs)

	ascending := strings.EqualFold(config.Sort, SortAscending)
	SortPullRequests(prs, ascending)
	logger.Info("sorted pull requests", "sort", config.Sort, "count", len(prs))

	extractors := CompileTransformers(config.LabelExtractors, logger)
	ExtractLabels(prs, extractors, logger)

	transformers := CompileTransformers(config.Transformers, logger)
	rendered := make([]renderedPR, 0, len(prs))
	for i := range prs {
		rendered = append(rendered, renderedPR{
			pr:   &prs[i],
			text: Transform(FillTemplate(prs[i], config.PRTemplate), transformers),
		})
	}
	logger.Info("rendered pull requests", "transformers", len(transformers), "count", len(rendered))

	result := classify(rendered, config.Categories, config.IgnoreLabels)
	logger.Info("classified pull requests",
		"categories", len(config.Categories),
		"categorized", len(result.Categorized),
		"uncategorized", len(result.Uncategorized),
		"ignored", len(result.Ignored))

	doc := config.Template
	doc = ReplacePlaceholder(doc, PlaceholderChangelog, renderCategories(config.Categories, result.Categories))
	doc = ReplacePlaceholder(doc, PlaceholderUncategorized, joinLines(result.Uncategorized))
	doc = ReplacePlaceholder(doc, PlaceholderIgnored, joinLines(result.Ignored))
	doc = ReplacePlaceholder(doc, PlaceholderCategorizedCount, strconv.Itoa(len(result.Categorized)))
	doc = ReplacePlaceholder(doc, PlaceholderUncategorizedCount, strconv.Itoa(len(result.Uncategorized)))
	doc = ReplacePlaceholder(doc, PlaceholderIgnoredCount, strconv.Itoa(len(result.Ignored)))
	return FillAdditionalPlaceholders(doc, opts)
}

// classify sorts rendered pull requests into category buckets.
// A pull request is added to every category it matches.
func classify(rendered []renderedPR, categories []Category, ignoreLabels []string) classification {
	result := classification{Categories: make([][]string, len(categories))}

	for _, r := range rendered {
		if haveCommonElements(ignoreLabels, r.pr.Labels) {
			result.Ignored = append(result.Ignored, r.text)
			continue
		}

		matched := false
		for i, category := range categories {
			if haveCommonElements(category.Labels, r.pr.Labels) {
				result.Categories[i] = append(result.Categories[i], r.text)
				matched = true
			}
		}

		if matched {
			result.Categorized = append(result.Categorized, r.text)
			continue
		}

		for i, category := range categories {
			if category.IsCatchAll() {
				result.Categories[i] = append(result.Categories[i], r.text)
				break
			}
		}
		result.Uncategorized = append(result.Uncategorized, r.text)
	}

	return result
}

// renderCategories writes each non-empty category as its title, a blank
// line, one entry per line and a trailing blank line.
func renderCategories(categories []Category, buckets [][]string) string {
	var b strings.Builder
	for i, category := range categories {
		if len(buckets[i]) == 0 {
			continue
		}
		b.WriteString(category.Title)
		b.WriteString("\n\n")
		b.WriteString(joinLines(buckets[i]))
		b.WriteString("\n")
	}
	return b.String()
}

// joinLines terminates every entry with a newline.
func joinLines(entries []string) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e)
		b.WriteString("\n")
	}
	return b.String()
}

func clonePullRequests(prs []PullRequest) []PullRequest {
	clone := make([]PullRequest, len(prs))
	for i, pr := range prs {
		pr.Labels = append([]string(nil), pr.Labels...)
		clone[i] = pr
	}
	return clone
}

func haveCommonElements(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
