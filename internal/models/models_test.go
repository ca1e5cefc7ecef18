package models

import (
	"errors"
	"strings"
	"testing"
)

func TestJobValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		job     Job
		wantErr string
	}{
		{name: "valid", job: Job{ID: "job-1", Requirements: []string{"Go"}}},
		{name: "no requirements is fine", job: Job{ID: "job-1"}},
		{name: "missing id", job: Job{Title: "x"}, wantErr: "id is required"},
		{name: "blank requirement", job: Job{ID: "job-1", Requirements: []string{"Go", "  "}}, wantErr: "requirements[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.job.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected %q in %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestCandidateValidate(t *testing.T) {
	t.Parallel()

	ok := CandidateProfile{
		ID:                "c1",
		EmploymentHistory: []Employment{{Company: "Acme"}},
		Certifications:    []Certification{{Name: "CKA"}},
	}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := []CandidateProfile{
		{},
		{ID: "c2", EmploymentHistory: []Employment{{Description: "only text"}}},
		{ID: "c3", Certifications: []Certification{{Issuer: "AWS"}}},
	}
	for _, c := range bad {
		var verr *ValidationError
		if err := c.Validate(); !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError for %+v, got %v", c, err)
		}
	}
}

func TestMatchResultCategory(t *testing.T) {
	t.Parallel()

	r := &MatchResult{CategoryScores: []CategoryScore{
		{Category: "skills", Score: 50},
		{Category: CategoryEducation, Score: 100},
	}}

	cs, ok := r.Category(CategorySkills)
	if !ok || cs.Score != 50 {
		t.Fatalf("expected case-insensitive skills lookup, got %+v %v", cs, ok)
	}
	if _, ok := r.Category(CategoryExperience); ok {
		t.Fatalf("did not expect experience category")
	}

	var nilResult *MatchResult
	if _, ok := nilResult.Category(CategorySkills); ok {
		t.Fatalf("nil result must not report categories")
	}
}

func TestJobIsPublished(t *testing.T) {
	t.Parallel()

	if !(Job{Status: " Published "}).IsPublished() {
		t.Fatalf("expected published")
	}
	if (Job{Status: JobStatusDraft}).IsPublished() {
		t.Fatalf("draft must not be published")
	}
}
