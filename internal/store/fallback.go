package store

import (
	"context"
	"errors"

	"github.com/spigell/ats-matcher/internal/models"
	"go.uber.org/zap"
)

// FallbackStore serves data from secondary when primary fails.
// Jobs and candidates fall back independently.
type FallbackStore struct {
	primary   Store
	secondary Store
	logger    *zap.Logger
}

func NewFallbackStore(primary, secondary Store, logger *zap.Logger) *FallbackStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackStore{primary: primary, secondary: secondary, logger: logger}
}

func (s *FallbackStore) FetchPublishedJobs(ctx context.Context) ([]models.Job, error) {
	jobs, err := s.primary.FetchPublishedJobs(ctx)
	if err == nil || ctx.Err() != nil {
		return jobs, err
	}
	s.warn("jobs", err)
	return s.secondary.FetchPublishedJobs(ctx)
}

func (s *FallbackStore) FetchAllCandidates(ctx context.Context) ([]models.CandidateProfile, error) {
	candidates, err := s.primary.FetchAllCandidates(ctx)
	if err == nil || ctx.Err() != nil {
		return candidates, err
	}
	s.warn("candidates", err)
	return s.secondary.FetchAllCandidates(ctx)
}

func (s *FallbackStore) GetJob(ctx context.Context, id string) (models.Job, error) {
	job, err := s.primary.GetJob(ctx, id)
	if err == nil || errors.Is(err, ErrJobNotFound) || ctx.Err() != nil {
		return job, err
	}
	s.warn("job", err)
	return s.secondary.GetJob(ctx, id)
}

func (s *FallbackStore) warn(what string, err error) {
	s.logger.Warn("failed to load from the primary store, showing sample data instead",
		zap.String("entity", what),
		zap.Error(err),
	)
}
