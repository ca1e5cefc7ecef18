package ai

import (
	"context"
	"unicode/utf8"

	"github.com/spigell/ats-matcher/internal/logger"
	"github.com/spigell/ats-matcher/internal/models"
	"github.com/spigell/ats-matcher/internal/utils"
	"go.uber.org/zap"
)

const defaultMaxLogLength = 200

// Matcher scores a candidate against a job with a text-generation model.
type Matcher struct {
	generator Generator
	logger    *zap.Logger
	maxLogLen int
}

func NewMatcher(generator Generator, log *zap.Logger, maxLogLength int) *Matcher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Matcher{
		generator: generator,
		logger:    logger.WithAI(log, generator.Provider(), generator.Model()),
		maxLogLen: maxLogLength,
	}
}

func (m *Matcher) Model() string {
	return m.generator.Model()
}

// Evaluate makes exactly one model call. Every failure is a *ScoringError.
func (m *Matcher) Evaluate(ctx context.Context, job models.Job, candidate models.CandidateProfile) (*models.MatchResult, error) {
	prompt := BuildPrompt(job, candidate)

	m.logger.Debug("generate content request",
		zap.String("job_id", job.ID),
		zap.String("candidate_id", candidate.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, m.maxLogLen)),
	)

	raw, err := m.generator.GenerateContent(ctx, SystemInstruction, prompt)
	if err != nil {
		return nil, &ScoringError{Stage: StageGenerate, CandidateID: candidate.ID, Cause: err}
	}

	m.logger.Debug("generate content response",
		zap.String("job_id", job.ID),
		zap.String("candidate_id", candidate.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, m.maxLogLen)),
	)

	data, err := ExtractJSON(raw)
	if err != nil {
		return nil, &ScoringError{Stage: StageExtract, CandidateID: candidate.ID, Cause: err}
	}

	result, err := parseResult(data)
	if err != nil {
		return nil, &ScoringError{Stage: StageValidate, CandidateID: candidate.ID, Cause: err}
	}

	if _, ok := result.Category(models.CategorySkills); !ok {
		m.logger.Debug("model response has no skills category",
			zap.String("candidate_id", candidate.ID),
		)
	}
	normalizeSkills(result, job.Requirements)

	result.CandidateID = candidate.ID
	result.Model = m.generator.Model()
	return result, nil
}
