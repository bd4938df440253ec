package changelog

import (
	"log/slog"
	"strings"
)

// FindPredecessor returns the tag released immediately before target.
//
// Tags are sorted newest first (see TagComparator) and searched for target
// case-insensitively. When target is not among them the newest tag is
// returned. With ignorePreReleases set, pre-release tags are skipped; if no
// full release precedes target the result is not found.
//
// tags is sorted in place.
func FindPredecessor(tags []Tag, target string, ignorePreReleases bool, logger *slog.Logger) (Tag, bool) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(tags) == 0 {
		return Tag{}, false
	}

	SortTags(tags)

	for i := range tags {
		if !strings.EqualFold(tags[i].Name, target) {
			continue
		}

		if ignorePreReleases {
			logger.Info("ignoring pre-releases, searching for the closest release", "tag", target)
			for _, candidate := range tags[i+1:] {
				if !candidate.IsPreRelease() {
					return candidate, true
				}
			}
			return Tag{}, false
		}

		if i+1 < len(tags) {
			return tags[i+1], true
		}
		return Tag{}, false
	}

	logger.Warn("tag not found, falling back to the newest tag", "tag", target, "fallback", tags[0].Name)
	return tags[0], true
}
