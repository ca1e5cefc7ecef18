package filtering

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spigell/ats-matcher/internal/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type excludeCandidatesFilter struct {
	toggle
	ids map[string]struct{}
}

// NewExcludeCandidates creates a filter that removes candidates listed in the config.
func NewExcludeCandidates(ids []string) Filter {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			set[id] = struct{}{}
		}
	}
	return &excludeCandidatesFilter{ids: set}
}

func (f *excludeCandidatesFilter) Name() string { return "exclude_candidates" }

func (f *excludeCandidatesFilter) Validate() error { return nil }

func (f *excludeCandidatesFilter) Apply(_ context.Context, deps Deps, results []models.MatchResult) ([]models.MatchResult, Step, error) {
	out, step := excludeIDs(results, f.ids)
	if step.Dropped > 0 {
		deps.Logger.Debug("excluding candidates from config", zap.Int("excluded", step.Dropped))
	}
	return out, step, nil
}

func (f *excludeCandidatesFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"candidates": strconv.Itoa(len(f.ids))},
	}
}

// ExcludedCandidates is the on-disk list of candidates that must never be shown.
type ExcludedCandidates struct {
	Candidates []ExcludedCandidate `yaml:"candidates"`
}

type ExcludedCandidate struct {
	ID     string `yaml:"id"`
	Reason string `yaml:"reason,omitempty"`
}

// LoadExcludedCandidates reads an exclude file. A missing file is an empty list.
func LoadExcludedCandidates(path string) (*ExcludedCandidates, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &ExcludedCandidates{}, nil
	}
	if err != nil {
		return nil, err
	}

	var excluded ExcludedCandidates
	if err := yaml.Unmarshal(data, &excluded); err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	return &excluded, nil
}

// Save writes the list back to path.
func (e *ExcludedCandidates) Save(path string) error {
	data, err := yaml.Marshal(e)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Add appends id unless it is already listed.
func (e *ExcludedCandidates) Add(id, reason string) bool {
	for _, c := range e.Candidates {
		if c.ID == id {
			return false
		}
	}
	e.Candidates = append(e.Candidates, ExcludedCandidate{ID: id, Reason: reason})
	return true
}

func (e *ExcludedCandidates) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(e.Candidates))
	for _, c := range e.Candidates {
		ids[c.ID] = struct{}{}
	}
	return ids
}

type excludeFileFilter struct {
	toggle
	path string
}

// NewExcludeFile creates a filter that removes candidates contained in an exclude file.
func NewExcludeFile(path string) Filter {
	return &excludeFileFilter{path: strings.TrimSpace(path)}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate() error { return nil }

func (f *excludeFileFilter) Apply(_ context.Context, _ Deps, results []models.MatchResult) ([]models.MatchResult, Step, error) {
	if f.path == "" {
		return results, Step{Initial: len(results), Left: len(results)}, nil
	}

	excluded, err := LoadExcludedCandidates(f.path)
	if err != nil {
		return nil, Step{}, fmt.Errorf("getting excluded candidates from file: %w", err)
	}

	out, step := excludeIDs(results, excluded.IDs())
	return out, step, nil
}

func excludeIDs(results []models.MatchResult, ids map[string]struct{}) ([]models.MatchResult, Step) {
	return keep(results, func(r models.MatchResult) bool {
		_, skip := ids[r.CandidateID]
		return !skip
	})
}
