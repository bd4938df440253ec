package changelog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func samplePR() PullRequest {
	return PullRequest{
		Number:             42,
		Title:              "Add dark mode",
		HTMLURL:            "https://github.com/octo/app/pull/42",
		MergedAt:           time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		Author:             "alice",
		Labels:             []string{"feature", "ui"},
		Milestone:          "v2.0",
		Body:               "Adds a toggle.",
		Assignees:          []string{"bob", "carol"},
		RequestedReviewers: []string{"dave"},
	}
}

func TestFillTemplate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		pr       PullRequest
		template string
		want     string
	}{
		"all placeholders": {
			pr: samplePR(),
			template: "${{NUMBER}}|${{TITLE}}|${{URL}}|${{MERGED_AT}}|${{AUTHOR}}|${{LABELS}}|" +
				"${{MILESTONE}}|${{BODY}}|${{ASSIGNEES}}|${{REVIEWERS}}",
			want: "42|Add dark mode|https://github.com/octo/app/pull/42|2024-05-06T07:08:09.000Z|alice|feature, ui|" +
				"v2.0|Adds a toggle.|bob, carol|dave",
		},
		"bare braces accepted": {
			pr:       samplePR(),
			template: "- {{TITLE}} (#{{NUMBER}})",
			want:     "- Add dark mode (#42)",
		},
		"repeated placeholder": {
			pr:       samplePR(),
			template: "${{NUMBER}} ${{NUMBER}}",
			want:     "42 42",
		},
		"unknown placeholder untouched": {
			pr:       samplePR(),
			template: "${{TITLE}} ${{SOMETHING}}",
			want:     "Add dark mode ${{SOMETHING}}",
		},
		"missing optional fields are empty": {
			pr:       PullRequest{Number: 1, Title: "t"},
			template: "[${{MILESTONE}}][${{LABELS}}][${{ASSIGNEES}}][${{REVIEWERS}}]",
			want:     "[][][][]",
		},
		"values inserted literally": {
			pr:       PullRequest{Number: 3, Title: "Use $1 and ${{NUMBER}}"},
			template: "${{TITLE}}",
			want:     "Use $1 and ${{NUMBER}}",
		},
		"merged at converted to utc": {
			pr:       PullRequest{MergedAt: time.Date(2024, 1, 1, 1, 0, 0, 0, time.FixedZone("CET", 3600))},
			template: "${{MERGED_AT}}",
			want:     "2024-01-01T00:00:00.000Z",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FillTemplate(tt.pr, tt.template))
		})
	}
}

func TestFillAdditionalPlaceholders(t *testing.T) {
	t.Parallel()

	opts := Options{Owner: "octo", Repo: "app", FromTag: "v1.0.0", ToTag: "v1.1.0"}
	got := FillAdditionalPlaceholders("${{OWNER}}/${{REPO}} ${{FROM_TAG}}...{{TO_TAG}}", opts)
	assert.Equal(t, "octo/app v1.0.0...v1.1.0", got)
}
