package ai

import (
	"errors"
	"fmt"
)

const (
	StageGenerate = "generate"
	StageExtract  = "extract"
	StageValidate = "validate"
	// StageRateLimit means the call never left the process.
	StageRateLimit = "rate limit"
)

// ScoringError is returned when a candidate could not be scored by the model.
// The orchestrator recovers from it with the heuristic scorer.
type ScoringError struct {
	Stage       string
	CandidateID string
	Cause       error
}

func (e *ScoringError) Error() string {
	if e.CandidateID == "" {
		return fmt.Sprintf("ai scoring failed at %s: %v", e.Stage, e.Cause)
	}
	return fmt.Sprintf("ai scoring of candidate %s failed at %s: %v", e.CandidateID, e.Stage, e.Cause)
}

func (e *ScoringError) Unwrap() error {
	return e.Cause
}

// ConfigurationError reports a generator that cannot be built.
type ConfigurationError struct {
	Provider string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	if e.Provider == "" {
		return "ai configuration: " + e.Reason
	}
	return fmt.Sprintf("ai configuration for %s: %s", e.Provider, e.Reason)
}

// IsScoringError reports whether err carries a ScoringError.
func IsScoringError(err error) bool {
	var serr *ScoringError
	return errors.As(err, &serr)
}
