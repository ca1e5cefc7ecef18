package matching

import (
	"math"
	"strings"
	"testing"

	"github.com/spigell/ats-matcher/internal/models"
)

func TestWeightedOverall(t *testing.T) {
	t.Parallel()

	for skills := 0.0; skills <= 100; skills += 12.5 {
		for _, education := range []float64{0, 100} {
			for _, experience := range []float64{0, 100} {
				want := int(math.Round(0.6*skills + 0.2*education + 0.2*experience))
				if got := WeightedOverall(skills, education, experience); got != want {
					t.Fatalf("WeightedOverall(%v, %v, %v) = %d, want %d", skills, education, experience, got, want)
				}
			}
		}
	}

	if got := WeightedOverall(100.0/3, 0, 0); got != 20 {
		t.Fatalf("expected 20, got %d", got)
	}
}

func TestRank(t *testing.T) {
	t.Parallel()

	results := []models.MatchResult{
		{CandidateID: "b", OverallScore: 50},
		{CandidateID: "c", OverallScore: 90},
		{CandidateID: "a", OverallScore: 50},
		{CandidateID: "d", OverallScore: 10},
	}
	Rank(results)

	want := []string{"c", "a", "b", "d"}
	for i, id := range want {
		if results[i].CandidateID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, results[i].CandidateID)
		}
	}
}

func TestSummaryMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		summary Summary
		want    string
		usingAI bool
	}{
		{name: "fallback only", summary: Summary{Heuristic: 3}, want: "Successfully matched 3 candidates using fallback algorithm"},
		{name: "ai only", summary: Summary{AI: 2, Model: "gpt-4o-mini"}, want: "Successfully matched 2 candidates using AI model gpt-4o-mini", usingAI: true},
		{name: "mixed", summary: Summary{AI: 2, Heuristic: 1, Model: "gpt-4o-mini"}, want: "(1 scored by fallback algorithm)", usingAI: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.summary.Message(); !strings.Contains(got, tt.want) {
				t.Fatalf("expected %q in %q", tt.want, got)
			}
			if tt.summary.UsingAI() != tt.usingAI {
				t.Fatalf("unexpected UsingAI %v", tt.summary.UsingAI())
			}
		})
	}
}
