package ai

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/spigell/ats-matcher/internal/models"
	"github.com/spigell/ats-matcher/internal/utils"
)

//go:embed prompt.md
var promptTemplate string

const notProvided = "Not provided"

// BuildPrompt renders the scoring prompt for a job and candidate.
// Blank fields render as "Not provided".
func BuildPrompt(job models.Job, candidate models.CandidateProfile) string {
	replacer := strings.NewReplacer(
		"{{JOB_TITLE}}", utils.ValueOr(job.Title, notProvided),
		"{{JOB_REQUIREMENTS}}", formatRequirements(job.Requirements),
		"{{JOB_DESCRIPTION}}", utils.ValueOr(job.Description, notProvided),
		"{{JOB_RESPONSIBILITIES}}", utils.ValueOr(job.Responsibilities, notProvided),
		"{{CANDIDATE_BIO}}", utils.ValueOr(candidate.Bio, notProvided),
		"{{CANDIDATE_EDUCATION}}", utils.ValueOr(candidate.EducationLevel, notProvided),
		"{{CANDIDATE_EMPLOYMENT}}", formatEmployment(candidate.EmploymentHistory),
		"{{CANDIDATE_CERTIFICATIONS}}", formatCertifications(candidate.Certifications),
	)
	return replacer.Replace(promptTemplate)
}

func formatRequirements(reqs []string) string {
	lines := make([]string, 0, len(reqs))
	for _, req := range reqs {
		if req = strings.TrimSpace(req); req != "" {
			lines = append(lines, "- "+req)
		}
	}
	if len(lines) == 0 {
		return notProvided
	}
	return strings.Join(lines, "\n")
}

func formatEmployment(history []models.Employment) string {
	if len(history) == 0 {
		return notProvided
	}
	lines := make([]string, 0, len(history))
	for _, e := range history {
		lines = append(lines, fmt.Sprintf("Position: %s, Company: %s, Description: %s",
			utils.ValueOr(e.Position, notProvided),
			utils.ValueOr(e.Company, notProvided),
			utils.ValueOr(e.Description, notProvided),
		))
	}
	return strings.Join(lines, "\n")
}

func formatCertifications(certs []models.Certification) string {
	if len(certs) == 0 {
		return notProvided
	}
	items := make([]string, 0, len(certs))
	for _, c := range certs {
		items = append(items, fmt.Sprintf("%s (Issuer: %s)",
			utils.ValueOr(c.Name, notProvided),
			utils.ValueOr(c.Issuer, notProvided),
		))
	}
	return strings.Join(items, ", ")
}
