package search

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/tonewall/gallery-backend/internal/database"
	"github.com/tonewall/gallery-backend/internal/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CandidateSource produces the coarse, over-inclusive candidate set for a
// normalized query. The store implements this with its substring/containment
// filter.
type CandidateSource interface {
	Candidates(ctx context.Context, q string, typeFilter *model.ContentType, limit int) ([]*model.ContentRecord, error)
}

// ResultSet is the refined, ranked outcome of one search. It is owned by the
// search that produced it and replaced wholesale by newer searches.
type ResultSet struct {
	Query      model.SearchQuery
	Records    []*model.ContentRecord
	generation uint64
}

func (rs *ResultSet) Generation() uint64 {
	return rs.generation
}

// Window returns a fresh pagination window over the result set.
func (rs *ResultSet) Window(size int) *Window {
	return NewWindow(rs.Records, size)
}

// Service runs the search pipeline: normalized query in, candidate fetch,
// whole-word refinement, popularity sort. Every search gets a generation
// stamp; a slow response whose generation has been superseded is never
// published as the current result set.
type Service struct {
	source CandidateSource
	log    logrus.FieldLogger
	errors metric.Int64Counter

	generation atomic.Uint64

	mu      sync.Mutex
	current *ResultSet
}

func New(source CandidateSource, errors metric.Int64Counter, log logrus.FieldLogger) *Service {
	return &Service{
		source: source,
		log:    log,
		errors: errors,
	}
}

// Search runs the full pipeline for query and returns its result set. An
// empty query short-circuits to zero results without touching the candidate
// source. A candidate fetch failure is swallowed into zero candidates; the
// caller cannot tell it apart from no matches, operators get a log line and
// a counter bump instead.
func (s *Service) Search(ctx context.Context, query model.SearchQuery) *ResultSet {
	rs := &ResultSet{
		Query:      query,
		Records:    []*model.ContentRecord{},
		generation: s.generation.Add(1),
	}

	if query.Empty() {
		s.publish(rs)
		return rs
	}

	candidates, err := s.source.Candidates(ctx, query.Normalized, query.Type, database.CandidateCap)
	if err != nil {
		s.error(ctx, err, "getting search candidates")
		candidates = nil
	}

	rs.Records = Refine(candidates, query.Normalized)
	s.publish(rs)
	return rs
}

// Current returns the most recent published result set, or nil before the
// first search.
func (s *Service) Current() *ResultSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Service) publish(rs *ResultSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.generation < rs.generation {
		s.current = rs
	}
}

func (s *Service) error(ctx context.Context, err error, msg string) {
	s.errors.Add(ctx, 1, metric.WithAttributes(attribute.String("component", "search")))
	s.log.WithError(err).Error(msg)
}
