package config

import (
	"github.com/ariel-frischer/relnotes/internal/changelog"
)

// GetDefaultConfigTemplate returns a commented YAML configuration holding
// every option at its default value.
func GetDefaultConfigTemplate() string {
	return `# relnotes configuration
# See 'relnotes config keys' for all options

# Document layout
sort: DESC                            # Order pull requests by merge time: ASC | DESC
template: "${{CHANGELOG}}"            # Whole document; also ${{UNCATEGORIZED}}, ${{IGNORED}}, counts, ${{OWNER}}, ${{REPO}}, ${{FROM_TAG}}, ${{TO_TAG}}
pr_template: "- ${{TITLE}}\n   - PR: #${{NUMBER}}"
empty_template: "- no changes"        # Used when no pull request was merged in the range

# Categories are rendered in this order. A category without labels
# collects pull requests no other category matched.
categories:
  - title: "## 🚀 Features"
    labels: [feature]
  - title: "## 🐛 Fixes"
    labels: [fix]
  - title: "## 🧪 Tests"
    labels: [test]

ignore_labels: [ignore]               # Pull requests with any of these labels only appear in ${{IGNORED}}

# Derive extra labels from a pull request field (body, title, author, milestone)
label_extractor: []
#  - pattern: "\\[(feature|fix)\\]"
#    target: "$1"
#    on_property: title

# Rewrite each rendered pull request entry
transformers: []
#  - pattern: "- (.*)"
#    target: "* $1"

exclude_merge_branches: []            # Drop commits whose summary contains any of these

# Limits
max_tags_to_fetch: 200
max_pull_requests: 200
max_back_track_time_days: 365
`
}

// GetDefaults returns the default configuration values keyed by config key.
// List values are plain maps so they merge the same way file values do.
func GetDefaults() map[string]interface{} {
	d := changelog.DefaultConfiguration
	return map[string]interface{}{
		"sort":                     d.Sort,
		"template":                 d.Template,
		"pr_template":              d.PRTemplate,
		"empty_template":           d.EmptyTemplate,
		"categories":               categoriesToMaps(d.Categories),
		"ignore_labels":            append([]string{}, d.IgnoreLabels...),
		"label_extractor":          rulesToMaps(d.LabelExtractors),
		"transformers":             rulesToMaps(d.Transformers),
		"exclude_merge_branches":   append([]string{}, d.ExcludeMergeBranches...),
		"max_tags_to_fetch":        d.MaxTagsToFetch,
		"max_pull_requests":        d.MaxPullRequests,
		"max_back_track_time_days": d.MaxBackTrackTimeDays,
	}
}

func categoriesToMaps(categories []changelog.Category) []interface{} {
	out := make([]interface{}, 0, len(categories))
	for _, c := range categories {
		out = append(out, map[string]interface{}{
			"title":  c.Title,
			"labels": append([]string{}, c.Labels...),
		})
	}
	return out
}

func rulesToMaps(rules []changelog.Rule) []interface{} {
	out := make([]interface{}, 0, len(rules))
	for _, r := range rules {
		out = append(out, map[string]interface{}{
			"pattern":     r.Pattern,
			"target":      r.Target,
			"on_property": r.OnProperty,
		})
	}
	return out
}
