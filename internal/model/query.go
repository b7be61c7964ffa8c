package model

import (
	"net/url"
	"strings"
)

// SearchQuery is the request-scoped description of one search. It is built
// from user input or URL parameters and discarded once results are produced.
type SearchQuery struct {
	Raw        string
	Normalized string
	Type       *ContentType

	// FromChip marks searches triggered by a type chip rather than the
	// search box. It only suppresses redundant UI chrome and never affects
	// ranking.
	FromChip bool
}

// ParseSearchQuery builds a SearchQuery from the /search URL parameters:
// query=<text>, type=<tag> and from=chip.
func ParseSearchQuery(values url.Values) SearchQuery {
	q := SearchQuery{
		Raw:      strings.TrimSpace(values.Get("query")),
		FromChip: values.Get("from") == "chip",
	}
	if t, err := ParseContentType(values.Get("type")); err == nil {
		q.Type = &t
	}
	q.Normalized = NormalizeQuery(q.Raw)
	return q
}

// Empty reports whether the query carries no searchable text.
func (q SearchQuery) Empty() bool {
	return q.Normalized == ""
}

// NormalizeQuery canonicalizes raw search text for matching: lower-case the
// whole string, then strip one trailing "s" as a naive singularization
// ("wallpapers" becomes "wallpaper"). Words ending in a double "s" are left
// alone so that normalizing is idempotent. No further stemming and no Unicode
// normalization is applied.
func NormalizeQuery(raw string) string {
	q := strings.ToLower(strings.TrimSpace(raw))
	if len(q) > 1 && strings.HasSuffix(q, "s") && !strings.HasSuffix(q, "ss") {
		q = q[:len(q)-1]
	}
	return q
}
