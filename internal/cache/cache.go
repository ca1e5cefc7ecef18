package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spigell/ats-matcher/internal/models"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Store keeps scored results keyed by Key.
type Store interface {
	Get(ctx context.Context, key string) (*models.MatchResult, bool, error)
	Set(ctx context.Context, key string, result models.MatchResult, ttl time.Duration) error
}

// Key identifies a job, candidate and model combination.
func Key(job models.Job, candidate models.CandidateProfile, model string) (string, error) {
	payload, err := json.Marshal(struct {
		Job       models.Job              `json:"job"`
		Candidate models.CandidateProfile `json:"candidate"`
		Model     string                  `json:"model"`
	}{job, candidate, model})
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
