package changelog

import (
	"sort"
	"strings"
)

// NormalizeCommits removes duplicate SHAs, keeping the first occurrence,
// and sorts the result by date, oldest first. Commits with equal dates keep
// their relative order. The input slice is not modified.
func NormalizeCommits(commits []Commit) []Commit {
	seen := make(map[string]bool, len(commits))
	result := make([]Commit, 0, len(commits))

	for _, c := range commits {
		if seen[c.SHA] {
			continue
		}
		seen[c.SHA] = true
		result = append(result, c)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result
}

// FilterCommits drops every commit whose summary contains any of the
// exclude substrings. An empty exclude list keeps all commits.
func FilterCommits(commits []Commit, exclude []string) []Commit {
	if len(exclude) == 0 {
		return commits
	}

	filtered := make([]Commit, 0, len(commits))
	for _, c := range commits {
		if containsAny(c.Summary, exclude) {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
