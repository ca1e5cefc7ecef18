package matching

import (
	"fmt"
	"strings"

	"github.com/spigell/ats-matcher/internal/models"
	"github.com/spigell/ats-matcher/internal/utils"
)

// ScoreHeuristically scores a candidate by keyword overlap. It never fails.
func ScoreHeuristically(job models.Job, candidate models.CandidateProfile) models.MatchResult {
	skillMatches := make([]models.RequirementMatch, 0, len(job.Requirements))
	matched := 0
	for _, req := range job.Requirements {
		m := matchRequirement(req, candidate)
		if m.Matched {
			matched++
		}
		skillMatches = append(skillMatches, m)
	}

	var skills float64
	if len(job.Requirements) > 0 {
		skills = float64(matched) / float64(len(job.Requirements)) * 100
	}

	education := models.RequirementMatch{Requirement: "Education", Reason: "Education level not specified"}
	if level := strings.TrimSpace(candidate.EducationLevel); level != "" {
		education.Matched = true
		education.Reason = fmt.Sprintf("Candidate has %s education", level)
	}

	experience := models.RequirementMatch{Requirement: "Experience", Reason: "No employment history found"}
	if n := len(candidate.EmploymentHistory); n > 0 {
		experience.Matched = true
		experience.Reason = fmt.Sprintf("Candidate has %d previous job(s)", n)
	}

	educationScore := binaryScore(education.Matched)
	experienceScore := binaryScore(experience.Matched)

	return models.MatchResult{
		CandidateID:  candidate.ID,
		OverallScore: WeightedOverall(skills, educationScore, experienceScore),
		CategoryScores: []models.CategoryScore{
			{Category: models.CategorySkills, Score: skills, Matches: skillMatches},
			{Category: models.CategoryEducation, Score: educationScore, Matches: []models.RequirementMatch{education}},
			{Category: models.CategoryExperience, Score: experienceScore, Matches: []models.RequirementMatch{experience}},
		},
		Provenance: models.ProvenanceHeuristic,
	}
}

func matchRequirement(req string, candidate models.CandidateProfile) models.RequirementMatch {
	needle := strings.ToLower(strings.TrimSpace(req))
	result := models.RequirementMatch{Requirement: req}

	if needle != "" {
		if where := findRequirement(needle, candidate); where != "" {
			result.Matched = true
			result.Reason = fmt.Sprintf("Found %q in %s", req, where)
			return result
		}
	}

	result.Reason = fmt.Sprintf("Could not find %q in candidate profile", req)
	return result
}

// findRequirement returns a description of the first profile field containing needle.
func findRequirement(needle string, candidate models.CandidateProfile) string {
	if contains(candidate.Bio, needle) {
		return "candidate bio"
	}
	for _, e := range candidate.EmploymentHistory {
		if contains(e.Position, needle) {
			return fmt.Sprintf("position %q", e.Position)
		}
		if contains(e.Description, needle) {
			return fmt.Sprintf("description of the role at %s", utils.ValueOr(e.Company, "a previous employer"))
		}
	}
	for _, c := range candidate.Certifications {
		if contains(c.Name, needle) {
			return fmt.Sprintf("certification %q", c.Name)
		}
	}
	return ""
}

func contains(haystack, lowerNeedle string) bool {
	return haystack != "" && strings.Contains(strings.ToLower(haystack), lowerNeedle)
}

func binaryScore(ok bool) float64 {
	if ok {
		return 100
	}
	return 0
}
