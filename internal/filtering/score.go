package filtering

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spigell/ats-matcher/internal/models"
)

type minimumScoreFilter struct {
	toggle
	min float64
}

// NewMinimumScore drops results with an overall score below threshold.
func NewMinimumScore(threshold float64) Filter {
	return &minimumScoreFilter{min: threshold}
}

func (f *minimumScoreFilter) Name() string { return "minimum_score" }

func (f *minimumScoreFilter) Validate() error {
	if f.min < 0 || f.min > 100 {
		return fmt.Errorf("minimum score %v must be within [0,100]", f.min)
	}
	return nil
}

func (f *minimumScoreFilter) Apply(_ context.Context, _ Deps, results []models.MatchResult) ([]models.MatchResult, Step, error) {
	out, step := keep(results, func(r models.MatchResult) bool {
		return float64(r.OverallScore) >= f.min
	})
	return out, step, nil
}

func (f *minimumScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum": strconv.FormatFloat(f.min, 'f', -1, 64)},
	}
}

type topFilter struct {
	toggle
	limit int
}

// NewTop keeps the first limit results. Zero keeps everything.
func NewTop(limit int) Filter {
	return &topFilter{limit: limit}
}

func (f *topFilter) Name() string { return "top" }

func (f *topFilter) Validate() error {
	if f.limit < 0 {
		return fmt.Errorf("limit %d must not be negative", f.limit)
	}
	return nil
}

func (f *topFilter) Apply(_ context.Context, _ Deps, results []models.MatchResult) ([]models.MatchResult, Step, error) {
	initial := len(results)
	if f.limit == 0 || initial <= f.limit {
		return results, Step{Initial: initial, Left: initial}, nil
	}
	out := append([]models.MatchResult(nil), results[:f.limit]...)
	return out, Step{Initial: initial, Dropped: initial - f.limit, Left: f.limit}, nil
}
