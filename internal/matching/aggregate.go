package matching

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/spigell/ats-matcher/internal/models"
)

// Fixed weighting of the heuristic overall score.
const (
	SkillsWeight     = 0.6
	EducationWeight  = 0.2
	ExperienceWeight = 0.2
)

// WeightedOverall combines category scores and clamps the result to [0,100].
func WeightedOverall(skills, education, experience float64) int {
	overall := int(math.Round(skills*SkillsWeight + education*EducationWeight + experience*ExperienceWeight))
	return min(max(overall, 0), 100)
}

// Rank sorts results by overall score descending, then candidate id ascending.
func Rank(results []models.MatchResult) {
	slices.SortStableFunc(results, func(a, b models.MatchResult) int {
		if c := cmp.Compare(b.OverallScore, a.OverallScore); c != 0 {
			return c
		}
		return cmp.Compare(a.CandidateID, b.CandidateID)
	})
}

type InvalidCandidate struct {
	CandidateID string `json:"candidateId"`
	Reason      string `json:"reason"`
}

type Summary struct {
	RunID     string `json:"runId"`
	JobID     string `json:"jobId"`
	Total     int    `json:"total"`
	AI        int    `json:"ai"`
	Heuristic int    `json:"heuristic"`
	Invalid   int    `json:"invalid"`
	Model     string `json:"model,omitempty"`
	// MixedScales is set when AI and heuristic scores share one ranking.
	// The model picks its own weighting so the two are not directly comparable.
	MixedScales bool          `json:"mixedScales"`
	Duration    time.Duration `json:"-"`
	DurationMS  int64         `json:"durationMs"`
}

// UsingAI reports whether at least one result came from the model.
func (s Summary) UsingAI() bool {
	return s.AI > 0
}

// Message is the user-facing outcome line.
func (s Summary) Message() string {
	scored := s.AI + s.Heuristic
	switch {
	case s.AI == 0:
		return fmt.Sprintf("Successfully matched %d candidates using fallback algorithm", scored)
	case s.Heuristic == 0:
		return fmt.Sprintf("Successfully matched %d candidates using AI model %s", scored, s.Model)
	default:
		return fmt.Sprintf("Successfully matched %d candidates using AI model %s (%d scored by fallback algorithm)", scored, s.Model, s.Heuristic)
	}
}

type Report struct {
	Results []models.MatchResult `json:"results"`
	Summary Summary              `json:"summary"`
	Invalid []InvalidCandidate   `json:"invalid"`
}

func summarize(summary *Summary, results []models.MatchResult) {
	for _, r := range results {
		switch r.Provenance {
		case models.ProvenanceAI:
			summary.AI++
		default:
			summary.Heuristic++
		}
	}
	summary.MixedScales = summary.AI > 0 && summary.Heuristic > 0
}
