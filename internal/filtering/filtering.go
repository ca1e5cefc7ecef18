package filtering

import (
	"context"
	"fmt"

	"github.com/spigell/ats-matcher/internal/models"
	"go.uber.org/zap"
)

// Filter is one step applied to a ranked result list. Filters never reorder.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate() error
	Apply(ctx context.Context, deps Deps, results []models.MatchResult) ([]models.MatchResult, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	ExcludeCandidates []string `mapstructure:"exclude-candidates"`
	ExcludeFile       string   `mapstructure:"exclude-file"`
	MinimumScore      float64  `mapstructure:"minimum-score"`
	Top               int      `mapstructure:"top"`
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Default returns the standard filter chain for cfg.
func Default(cfg Config) []Filter {
	return []Filter{
		NewExcludeCandidates(cfg.ExcludeCandidates),
		NewExcludeFile(cfg.ExcludeFile),
		NewMinimumScore(cfg.MinimumScore),
		NewTop(cfg.Top),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially.
func Run(ctx context.Context, deps Deps, steps []Filter, results []models.MatchResult) ([]models.MatchResult, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			deps.Logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, results)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		deps.Logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		results = next
	}

	return results, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// toggle carries the enable state shared by every filter.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

func keep(results []models.MatchResult, pred func(models.MatchResult) bool) ([]models.MatchResult, Step) {
	out := make([]models.MatchResult, 0, len(results))
	for _, r := range results {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out, Step{Initial: len(results), Dropped: len(results) - len(out), Left: len(out)}
}
