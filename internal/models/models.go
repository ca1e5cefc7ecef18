package models

import (
	"strings"
)

const (
	JobStatusPublished = "published"
	JobStatusDraft     = "draft"
	JobStatusClosed    = "closed"
)

// Job is a posted position matched against candidates.
type Job struct {
	ID               string   `json:"id" yaml:"id" mapstructure:"id"`
	Title            string   `json:"title" yaml:"title" mapstructure:"title"`
	Description      string   `json:"description" yaml:"description" mapstructure:"description"`
	Requirements     []string `json:"requirements" yaml:"requirements" mapstructure:"requirements"`
	Responsibilities string   `json:"responsibilities,omitempty" yaml:"responsibilities" mapstructure:"responsibilities"`
	Status           string   `json:"status,omitempty" yaml:"status" mapstructure:"status"`
}

// IsPublished reports whether the job is open for matching.
func (j Job) IsPublished() bool {
	return strings.EqualFold(strings.TrimSpace(j.Status), JobStatusPublished)
}

type Employment struct {
	Company     string `json:"company" yaml:"company" mapstructure:"company"`
	Position    string `json:"position" yaml:"position" mapstructure:"position"`
	Description string `json:"description,omitempty" yaml:"description" mapstructure:"description"`
}

type Certification struct {
	Name   string `json:"name" yaml:"name" mapstructure:"name"`
	Issuer string `json:"issuer,omitempty" yaml:"issuer" mapstructure:"issuer"`
}

// CandidateProfile holds everything the scorers know about a person.
type CandidateProfile struct {
	ID                string          `json:"id" yaml:"id" mapstructure:"id"`
	Name              string          `json:"name,omitempty" yaml:"name" mapstructure:"name"`
	Email             string          `json:"email,omitempty" yaml:"email" mapstructure:"email"`
	Bio               string          `json:"bio" yaml:"bio" mapstructure:"bio"`
	EmploymentHistory []Employment    `json:"employment_history" yaml:"employment_history" mapstructure:"employment_history"`
	Certifications    []Certification `json:"certifications" yaml:"certifications" mapstructure:"certifications"`
	EducationLevel    string          `json:"education_level" yaml:"education_level" mapstructure:"education_level"`
}

// Category names a sub-score of a match.
type Category string

const (
	CategorySkills              Category = "Skills"
	CategoryEducation           Category = "Education"
	CategoryExperience          Category = "Experience"
	CategoryIndustryFit         Category = "Industry Fit"
	CategoryResponsibilityMatch Category = "Responsibility Match"
)

// Is compares category names ignoring case and surrounding whitespace.
func (c Category) Is(other Category) bool {
	return strings.EqualFold(strings.TrimSpace(string(c)), strings.TrimSpace(string(other)))
}

type RequirementMatch struct {
	Requirement string `json:"requirement"`
	Matched     bool   `json:"matched"`
	Reason      string `json:"reason"`
}

type CategoryScore struct {
	Category Category           `json:"category"`
	Score    float64            `json:"score"`
	Matches  []RequirementMatch `json:"matches"`
}

// Provenance tells which scoring path produced a result.
type Provenance string

const (
	ProvenanceAI        Provenance = "ai"
	ProvenanceHeuristic Provenance = "heuristic"
)

type MatchResult struct {
	CandidateID    string          `json:"candidateId"`
	OverallScore   int             `json:"overallScore"`
	CategoryScores []CategoryScore `json:"categoryScores"`
	Provenance     Provenance      `json:"provenance"`
	Model          string          `json:"model,omitempty"`
}

// Category returns the first category score with the given name.
func (r *MatchResult) Category(name Category) (CategoryScore, bool) {
	if r == nil {
		return CategoryScore{}, false
	}
	for _, cs := range r.CategoryScores {
		if cs.Category.Is(name) {
			return cs, true
		}
	}
	return CategoryScore{}, false
}
