package changelog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func commitAt(sha, message string, offset time.Duration) Commit {
	return NewCommit(sha, message, "octocat", baseTime.Add(offset))
}

func TestNewCommit_Summary(t *testing.T) {
	t.Parallel()

	c := NewCommit("abc", "Fix parser\n\nLonger description", "alice", baseTime)
	assert.Equal(t, "Fix parser", c.Summary)
	assert.Equal(t, "Fix parser\n\nLonger description", c.Message)
}

func TestNormalizeCommits(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input    []Commit
		wantSHAs []string
	}{
		"empty input": {
			input:    nil,
			wantSHAs: []string{},
		},
		"sorted ascending by date": {
			input: []Commit{
				commitAt("c", "third", 2*time.Hour),
				commitAt("a", "first", 0),
				commitAt("b", "second", time.Hour),
			},
			wantSHAs: []string{"a", "b", "c"},
		},
		"duplicates keep first occurrence": {
			input: []Commit{
				commitAt("a", "original", time.Hour),
				commitAt("b", "other", 0),
				commitAt("a", "duplicate", -time.Hour),
			},
			wantSHAs: []string{"b", "a"},
		},
		"equal dates keep input order": {
			input: []Commit{
				commitAt("x", "one", 0),
				commitAt("y", "two", 0),
				commitAt("z", "three", 0),
			},
			wantSHAs: []string{"x", "y", "z"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := NormalizeCommits(tt.input)
			shas := make([]string, 0, len(got))
			for _, c := range got {
				shas = append(shas, c.SHA)
			}
			assert.Equal(t, tt.wantSHAs, shas)
		})
	}
}

func TestNormalizeCommits_Invariants(t *testing.T) {
	t.Parallel()

	input := []Commit{
		commitAt("d", "d", 5*time.Minute),
		commitAt("a", "a", 3*time.Minute),
		commitAt("d", "d again", time.Minute),
		commitAt("b", "b", 3*time.Minute),
		commitAt("a", "a again", 0),
		commitAt("c", "c", -time.Minute),
	}

	got := NormalizeCommits(input)
	require.Len(t, got, 4)

	seen := map[string]bool{}
	for i, c := range got {
		assert.False(t, seen[c.SHA], "sha %s appears twice", c.SHA)
		seen[c.SHA] = true
		if i > 0 {
			assert.False(t, c.Date.Before(got[i-1].Date), "commits must be non-descending by date")
		}
	}

	for _, c := range got {
		if c.SHA == "a" {
			assert.Equal(t, "a", c.Message, "first occurrence must be kept")
		}
	}
	assert.Equal(t, "d", input[0].SHA, "input must not be reordered")
}

func TestFilterCommits(t *testing.T) {
	t.Parallel()

	commits := []Commit{
		commitAt("1", "Merge branch 'main' into feature", 0),
		commitAt("2", "Add login page", time.Minute),
		commitAt("3", "Merge pull request #12 from org/release", 2*time.Minute),
		commitAt("4", "Fix typo\n\nMerge branch mentioned only in body", 3*time.Minute),
	}

	tests := map[string]struct {
		exclude  []string
		wantSHAs []string
	}{
		"nil exclude keeps all": {
			exclude:  nil,
			wantSHAs: []string{"1", "2", "3", "4"},
		},
		"empty exclude keeps all": {
			exclude:  []string{},
			wantSHAs: []string{"1", "2", "3", "4"},
		},
		"substring in summary drops commit": {
			exclude:  []string{"Merge branch"},
			wantSHAs: []string{"2", "3", "4"},
		},
		"any pattern drops commit": {
			exclude:  []string{"Merge branch", "from org/release"},
			wantSHAs: []string{"2", "4"},
		},
		"plain substring not regex": {
			exclude:  []string{"Merge.*"},
			wantSHAs: []string{"1", "2", "3", "4"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := FilterCommits(commits, tt.exclude)
			shas := make([]string, 0, len(got))
			for _, c := range got {
				shas = append(shas, c.SHA)
			}
			assert.Equal(t, tt.wantSHAs, shas)
		})
	}
}
