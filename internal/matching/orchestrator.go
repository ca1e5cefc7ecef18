package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spigell/ats-matcher/internal/ai"
	"github.com/spigell/ats-matcher/internal/logger"
	"github.com/spigell/ats-matcher/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Scorer produces an AI match result. A failure of any kind sends the
// candidate to the heuristic scorer.
type Scorer interface {
	Evaluate(ctx context.Context, job models.Job, candidate models.CandidateProfile) (*models.MatchResult, error)
	Model() string
}

// CachedScorer is implemented by scorers that can answer some candidates
// without a remote call. Cached answers skip the rate limiter.
type CachedScorer interface {
	Cached(ctx context.Context, job models.Job, candidate models.CandidateProfile) (*models.MatchResult, bool)
}

type Config struct {
	// Concurrency caps in-flight scoring calls. Zero means unbounded.
	Concurrency int
	// Timeout bounds every single AI call. Zero disables it.
	Timeout           time.Duration
	RequestsPerMinute int
}

type Orchestrator struct {
	scorer  Scorer
	cfg     Config
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewOrchestrator builds an orchestrator. A nil scorer scores everything heuristically.
func NewOrchestrator(scorer Scorer, cfg Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}

	o := &Orchestrator{scorer: scorer, cfg: cfg, logger: logger}
	if cfg.RequestsPerMinute > 0 {
		o.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return o
}

// MatchCandidates scores every valid candidate and returns them ranked.
func (o *Orchestrator) MatchCandidates(ctx context.Context, job models.Job, candidates []models.CandidateProfile) (*Report, error) {
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("match candidates: %w", err)
	}

	started := time.Now()
	summary := Summary{
		RunID: uuid.NewString(),
		JobID: job.ID,
		Total: len(candidates),
	}
	if o.scorer != nil {
		summary.Model = o.scorer.Model()
	}

	log := logger.WithRun(o.logger, summary.RunID, job.ID)
	log.Info("scoring candidates",
		zap.Int("candidates", len(candidates)),
		zap.Bool("ai_enabled", o.scorer != nil),
		zap.Int("concurrency", o.cfg.Concurrency),
	)

	results := make([]*models.MatchResult, len(candidates))
	invalid := make([]error, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	if o.cfg.Concurrency > 0 {
		g.SetLimit(o.cfg.Concurrency)
	}

	for i, candidate := range candidates {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := candidate.Validate(); err != nil {
				invalid[i] = err
				return nil
			}
			result, err := o.score(gctx, log, job, candidate)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		Results: make([]models.MatchResult, 0, len(candidates)),
		Invalid: []InvalidCandidate{},
	}
	for i, candidate := range candidates {
		if invalid[i] != nil {
			log.Warn("skipping invalid candidate", logger.Candidate(candidate.ID), zap.Error(invalid[i]))
			report.Invalid = append(report.Invalid, InvalidCandidate{CandidateID: candidate.ID, Reason: invalid[i].Error()})
			continue
		}
		report.Results = append(report.Results, *results[i])
	}

	Rank(report.Results)
	summarize(&summary, report.Results)
	summary.Invalid = len(report.Invalid)
	summary.Duration = time.Since(started)
	summary.DurationMS = summary.Duration.Milliseconds()
	report.Summary = summary

	if summary.MixedScales {
		log.Warn("ranking mixes ai and heuristic scores, which use different scales",
			zap.Int("ai", summary.AI),
			zap.Int("heuristic", summary.Heuristic),
		)
	}

	log.Info("candidates matched",
		zap.Int("ai", summary.AI),
		zap.Int("heuristic", summary.Heuristic),
		zap.Int("invalid", summary.Invalid),
		zap.Duration("duration", summary.Duration),
	)

	return report, nil
}

// score runs the AI scorer for one candidate and falls back to the heuristic.
// It only returns an error when ctx itself is done.
func (o *Orchestrator) score(ctx context.Context, log *zap.Logger, job models.Job, candidate models.CandidateProfile) (*models.MatchResult, error) {
	if o.scorer == nil {
		result := ScoreHeuristically(job, candidate)
		return &result, nil
	}

	a := o.evaluate(ctx, job, candidate)
	if a.result != nil {
		return a.result, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	log.Warn("ai scoring failed, using heuristic fallback",
		logger.Candidate(candidate.ID),
		zap.Error(a.cause),
	)
	result := ScoreHeuristically(job, candidate)
	return &result, nil
}

type attempt struct {
	result *models.MatchResult
	cause  error
}

func (o *Orchestrator) evaluate(ctx context.Context, job models.Job, candidate models.CandidateProfile) attempt {
	if cs, ok := o.scorer.(CachedScorer); ok {
		if result, hit := cs.Cached(ctx, job, candidate); hit && result != nil {
			return o.accept(candidate, result)
		}
	}

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return attempt{cause: &ai.ScoringError{Stage: ai.StageRateLimit, CandidateID: candidate.ID, Cause: err}}
		}
	}

	callCtx := ctx
	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}

	result, err := o.scorer.Evaluate(callCtx, job, candidate)
	if err != nil {
		return attempt{cause: err}
	}
	if result == nil {
		return attempt{cause: &ai.ScoringError{Stage: ai.StageValidate, CandidateID: candidate.ID, Cause: errors.New("scorer returned no result")}}
	}
	return o.accept(candidate, result)
}

func (o *Orchestrator) accept(candidate models.CandidateProfile, result *models.MatchResult) attempt {
	out := *result
	out.CandidateID = candidate.ID
	out.Provenance = models.ProvenanceAI
	return attempt{result: &out}
}
