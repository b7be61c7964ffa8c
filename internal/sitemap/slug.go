package sitemap

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives the URL-safe identifier for a display name: lower-case,
// runs of non-alphanumeric characters collapse to a single hyphen, and
// leading/trailing hyphens are trimmed. Deterministic, so the same name
// always yields the same slug. Two records whose names normalize to the same
// slug share it; the numeric id in front of the slug keeps item URLs unique.
func Slugify(name string) string {
	slug := nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}
