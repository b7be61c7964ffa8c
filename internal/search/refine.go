package search

import (
	"regexp"
	"sort"

	"github.com/tonewall/gallery-backend/internal/model"
)

// Refine narrows the coarse candidate set to records where the normalized
// query matches as a whole word (with an optional plural "s") in the name or
// description, then orders by download count descending. The sort is stable:
// records with equal download counts keep the relative order the candidate
// stage produced, so identical queries always rank identically.
func Refine(candidates []*model.ContentRecord, normalized string) []*model.ContentRecord {
	if normalized == "" {
		return []*model.ContentRecord{}
	}

	re := wordPattern(normalized)
	refined := []*model.ContentRecord{}
	for _, rec := range candidates {
		if re.MatchString(rec.Name + " " + rec.Description) {
			refined = append(refined, rec)
		}
	}

	sort.SliceStable(refined, func(i, j int) bool {
		return refined[i].Downloads > refined[j].Downloads
	})

	return refined
}

// wordPattern builds the whole-word matcher for a normalized query. The
// candidate stage matches substrings, so "art" would also have pulled in
// "cartoon"; the word boundary here throws those back out.
func wordPattern(normalized string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(normalized) + `s?\b`)
}
