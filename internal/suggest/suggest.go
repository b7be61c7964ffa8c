package suggest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sirupsen/logrus"
	"github.com/tonewall/gallery-backend/internal/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"
)

// Field weights for the combined distance. Fixed relative to each other; when
// an entry lacks a field, the remaining weights are renormalized so the scale
// stays 0=exact..1=no match.
const (
	weightName     = 0.6
	weightTags     = 0.25
	weightCategory = 0.15
)

// Threshold is the combined distance above which an entry is excluded.
const Threshold = 0.45

// MaxResults caps how many suggestions one query returns.
const MaxResults = 20

// FetchFunc retrieves the catalog projection the index is built from.
type FetchFunc func(ctx context.Context) ([]model.CatalogEntry, error)

// Match is one suggestion: the catalog entry and its distance to the query.
type Match struct {
	Entry    model.CatalogEntry `json:"entry"`
	Distance float64            `json:"distance"`
}

// Index serves typeahead suggestions from a cached catalog projection. The
// projection is fetched once on first use and kept for the lifetime of the
// index; catalog mutations do not invalidate it. Freshness is traded for
// per-keystroke responsiveness, and only an explicit Rebuild or Invalidate
// discards the snapshot.
type Index struct {
	fetch  FetchFunc
	log    logrus.FieldLogger
	errors metric.Int64Counter

	group singleflight.Group

	mu      sync.RWMutex
	built   bool
	entries []model.CatalogEntry
}

func New(fetch FetchFunc, errors metric.Int64Counter, log logrus.FieldLogger) *Index {
	return &Index{
		fetch:  fetch,
		log:    log,
		errors: errors,
	}
}

// Suggest returns up to MaxResults entries within Threshold of q, best match
// first. The first call builds the snapshot; a failed build is swallowed
// into zero suggestions and logged.
func (ix *Index) Suggest(ctx context.Context, q string) []Match {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return []Match{}
	}

	matches := []Match{}
	for _, entry := range ix.snapshot(ctx) {
		d := ix.distance(q, entry)
		if d > Threshold {
			continue
		}
		matches = append(matches, Match{Entry: entry, Distance: d})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	if len(matches) > MaxResults {
		matches = matches[:MaxResults]
	}
	return matches
}

// Invalidate drops the cached snapshot. The next Suggest call fetches a new
// one.
func (ix *Index) Invalidate() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.built = false
	ix.entries = nil
}

// Rebuild fetches a fresh snapshot and replaces the cached one. Unlike the
// lazy build, a failure is returned to the caller; the old snapshot stays in
// place.
func (ix *Index) Rebuild(ctx context.Context) error {
	entries, err := ix.fetch(ctx)
	if err != nil {
		return err
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entries = entries
	ix.built = true
	return nil
}

// Size returns how many entries the cached snapshot holds.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

func (ix *Index) snapshot(ctx context.Context) []model.CatalogEntry {
	ix.mu.RLock()
	if ix.built {
		entries := ix.entries
		ix.mu.RUnlock()
		return entries
	}
	ix.mu.RUnlock()

	// near-simultaneous first calls coalesce into a single fetch
	v, err, _ := ix.group.Do("build", func() (any, error) {
		ix.mu.RLock()
		if ix.built {
			entries := ix.entries
			ix.mu.RUnlock()
			return entries, nil
		}
		ix.mu.RUnlock()

		entries, err := ix.fetch(ctx)
		if err != nil {
			return nil, err
		}

		ix.mu.Lock()
		ix.entries = entries
		ix.built = true
		ix.mu.Unlock()
		return entries, nil
	})
	if err != nil {
		ix.error(ctx, err, "building suggestion index")
		return nil
	}
	return v.([]model.CatalogEntry)
}

// distance combines the per-field distances with the fixed weights,
// renormalized over the fields the entry actually carries. Tags and
// category can only strengthen a match: a close name match is never pushed
// over the threshold by unrelated secondary fields, so the entry scores the
// better of its name distance and the weighted combination.
func (ix *Index) distance(q string, entry model.CatalogEntry) float64 {
	var total, weights float64

	nameDist := 1.0
	if entry.Name != "" {
		nameDist = fieldDistance(q, entry.Name)
		total += weightName * nameDist
		weights += weightName
	}
	if len(entry.Tags) > 0 {
		best := 1.0
		for _, tag := range entry.Tags {
			if d := fieldDistance(q, tag); d < best {
				best = d
			}
		}
		total += weightTags * best
		weights += weightTags
	}
	if entry.Category != "" {
		total += weightCategory * fieldDistance(q, entry.Category)
		weights += weightCategory
	}

	if weights == 0 {
		return 1
	}
	combined := total / weights
	if nameDist < combined {
		return nameDist
	}
	return combined
}

// fieldDistance scores one field against the query: each query word takes
// the distance to its closest field word, and the word scores are averaged.
// A field containing the whole query verbatim is an exact match.
func fieldDistance(q, field string) float64 {
	field = strings.ToLower(field)
	if strings.Contains(field, q) {
		return 0
	}

	qWords := strings.Fields(q)
	fieldWords := strings.Fields(field)
	if len(qWords) == 0 || len(fieldWords) == 0 {
		return 1
	}

	var sum float64
	for _, qw := range qWords {
		best := 1.0
		for _, fw := range fieldWords {
			if d := normalizedLevenshtein(qw, fw); d < best {
				best = d
			}
		}
		sum += best
	}
	return sum / float64(len(qWords))
}

func normalizedLevenshtein(a, b string) float64 {
	if a == b {
		return 0
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	return float64(fuzzy.LevenshteinDistance(a, b)) / float64(longest)
}

func (ix *Index) error(ctx context.Context, err error, msg string) {
	ix.errors.Add(ctx, 1, metric.WithAttributes(attribute.String("component", "suggest")))
	ix.log.WithError(err).Error(msg)
}
