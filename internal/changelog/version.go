package changelog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// TagComparator orders tag names newest first.
//
// Names are compared lexically, segment by segment, with a locale-aware
// collator: "10" sorts before "9". A tag without a pre-release qualifier is
// newer than any pre-release of the same core version:
//
//	2020.4.0
//	2020.4.0-rc02
//	2020.3.2
//	2020.3.1
//	2020.3.1-rc03
//	2020.3.1-rc02
//	2020.3.1-rc01
//	2020.3.1-b01
//	2020.3.1-a01
//	2020.3.0
//
// A TagComparator is not safe for concurrent use.
type TagComparator struct {
	collator *collate.Collator
}

// NewTagComparator returns a comparator using the root locale.
func NewTagComparator() *TagComparator {
	return &TagComparator{collator: collate.New(language.Und)}
}

// Compare returns -1 if a is older than b, 1 if a is newer, and 0 if neither.
func (c *TagComparator) Compare(a, b string) int {
	coreA, suffixA, preA := splitTagName(a)
	coreB, suffixB, preB := splitTagName(b)

	if r := c.collator.CompareString(coreA, coreB); r != 0 {
		return r
	}

	switch {
	case !preA && !preB:
		return 0
	case !preA:
		return 1
	case !preB:
		return -1
	}
	return c.collator.CompareString(suffixA, suffixB)
}

// CompareTags compares two tag names with a fresh TagComparator.
func CompareTags(a, b string) int {
	return NewTagComparator().Compare(a, b)
}

// SortTags sorts tags in place, newest first, and returns the slice.
// Tags that compare equal keep their input order.
func SortTags(tags []Tag) []Tag {
	cmp := NewTagComparator()
	sort.SliceStable(tags, func(i, j int) bool {
		return cmp.Compare(tags[i].Name, tags[j].Name) > 0
	})
	return tags
}

// splitTagName strips one leading "v" and splits on the first "-".
func splitTagName(name string) (core, suffix string, preRelease bool) {
	name = strings.TrimPrefix(name, "v")
	core, suffix, preRelease = strings.Cut(name, "-")
	return core, suffix, preRelease
}
