// Package board serves the computed job board: company representatives per
// tier and the deduplicated announcement list. Results are memoized until
// the underlying records change.
package board

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/listing"
	"jobboard-engine/internal/metrics"
	"jobboard-engine/internal/news"
	"jobboard-engine/internal/store"
	"jobboard-engine/internal/tier"
)

// ErrUnknownTier is returned for tiers that are not canonical. Callers
// normalize aliases first.
var ErrUnknownTier = errors.New("unknown tier")

type Service struct {
	db  *sql.DB
	log *zap.Logger

	mu       sync.Mutex
	gen      uint64
	listings listing.Buckets
	news     []domain.NewsItem
}

func New(db *sql.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log}
}

// Invalidate drops memoized results. A computation already in flight when
// Invalidate runs is not cached.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.gen++
	s.listings = nil
	s.news = nil
	s.mu.Unlock()
}

// Listings returns representatives for every tier. Callers must not modify
// the result.
func (s *Service) Listings(ctx context.Context) (listing.Buckets, error) {
	s.mu.Lock()
	if s.listings != nil {
		b := s.listings
		s.mu.Unlock()
		return b, nil
	}
	gen := s.gen
	s.mu.Unlock()

	jobs, err := store.ListJobs(ctx, s.db, store.ListJobsOpts{})
	if err != nil {
		return nil, err
	}
	p := listing.Partition(jobs)
	b := listing.Dedupe(p)

	if n := len(p.Dropped); n > 0 {
		s.log.Debug("jobs matched no bucket", zap.Int("count", n))
	}
	metrics.ObserveDropped(len(p.Dropped))
	for t, n := range b.Counts() {
		metrics.ObserveRepresentatives(string(t), n)
	}

	s.mu.Lock()
	if s.gen == gen {
		s.listings = b
	}
	s.mu.Unlock()
	return b, nil
}

// Tier returns the representatives of one bucket.
func (s *Service) Tier(ctx context.Context, t tier.Tier) ([]listing.Representative, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTier, t)
	}
	b, err := s.Listings(ctx)
	if err != nil {
		return nil, err
	}
	return b[t], nil
}

func (s *Service) News(ctx context.Context) ([]domain.NewsItem, error) {
	s.mu.Lock()
	if s.news != nil {
		n := s.news
		s.mu.Unlock()
		return n, nil
	}
	gen := s.gen
	s.mu.Unlock()

	items, err := store.ListNews(ctx, s.db, 0)
	if err != nil {
		return nil, err
	}
	out := news.Dedupe(items)

	s.mu.Lock()
	if s.gen == gen {
		s.news = out
	}
	s.mu.Unlock()
	return out, nil
}
