package blog

import (
	"fmt"
	"regexp"
	"strings"
)

var slugPunctuation = regexp.MustCompile(`[^a-z0-9]+`)

// WeeklySlug derives a weekly post's slug from an ISO week label.
func WeeklySlug(isoWeek string) string {
	return "weekly-" + isoWeek
}

// ThematicSlugBase derives a thematic post's slug from a theme name:
// lowercased, punctuation runs collapsed to a single hyphen.
func ThematicSlugBase(theme string) string {
	lowered := strings.ToLower(theme)
	slug := slugPunctuation.ReplaceAllString(lowered, "-")
	return strings.Trim(slug, "-")
}

// ResolveSlugCollision appends a numeric suffix to base until exists
// reports false, keeping slugs unique.
func ResolveSlugCollision(base string, exists func(slug string) bool) string {
	if !exists(base) {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !exists(candidate) {
			return candidate
		}
	}
}
