package cache

import (
	"context"
	"time"

	"github.com/spigell/ats-matcher/internal/logger"
	"github.com/spigell/ats-matcher/internal/matching"
	"github.com/spigell/ats-matcher/internal/models"
	"go.uber.org/zap"
)

// Scorer serves AI results from a Store before calling the wrapped scorer.
// Cache failures never fail an evaluation.
type Scorer struct {
	inner  matching.Scorer
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

var _ matching.CachedScorer = (*Scorer)(nil)

func NewScorer(inner matching.Scorer, store Store, ttl time.Duration, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{inner: inner, store: store, ttl: ttl, logger: logger}
}

func (s *Scorer) Model() string {
	return s.inner.Model()
}

// Cached answers from the store only. Lookup failures count as a miss.
func (s *Scorer) Cached(ctx context.Context, job models.Job, candidate models.CandidateProfile) (*models.MatchResult, bool) {
	key, err := Key(job, candidate, s.inner.Model())
	if err != nil {
		s.logger.Warn("cache key failed", logger.Candidate(candidate.ID), zap.Error(err))
		return nil, false
	}
	return s.lookup(ctx, key, job, candidate)
}

func (s *Scorer) Evaluate(ctx context.Context, job models.Job, candidate models.CandidateProfile) (*models.MatchResult, error) {
	key, err := Key(job, candidate, s.inner.Model())
	if err != nil {
		s.logger.Warn("cache key failed", logger.Candidate(candidate.ID), zap.Error(err))
		return s.inner.Evaluate(ctx, job, candidate)
	}

	if cached, ok := s.lookup(ctx, key, job, candidate); ok {
		return cached, nil
	}

	result, err := s.inner.Evaluate(ctx, job, candidate)
	if err != nil {
		return nil, err
	}

	if result.Provenance == models.ProvenanceAI {
		if err := s.store.Set(ctx, key, *result, s.ttl); err != nil {
			s.logger.Warn("cache store failed", logger.Candidate(candidate.ID), zap.Error(err))
		}
	}

	return result, nil
}

func (s *Scorer) lookup(ctx context.Context, key string, job models.Job, candidate models.CandidateProfile) (*models.MatchResult, bool) {
	cached, ok, err := s.store.Get(ctx, key)
	switch {
	case err != nil:
		s.logger.Warn("cache lookup failed", logger.Candidate(candidate.ID), zap.Error(err))
		return nil, false
	case ok && cached != nil:
		s.logger.Debug("cache hit", zap.String("job_id", job.ID), logger.Candidate(candidate.ID))
		return cached, true
	}
	return nil, false
}
