package store

import (
	"context"

	"github.com/spigell/ats-matcher/internal/models"
)

// SampleStore serves the built-in demo dataset.
type SampleStore struct{}

func (SampleStore) FetchPublishedJobs(_ context.Context) ([]models.Job, error) {
	return publishedOnly(SampleDataset().Jobs), nil
}

func (SampleStore) FetchAllCandidates(_ context.Context) ([]models.CandidateProfile, error) {
	return SampleDataset().Candidates, nil
}

func (SampleStore) GetJob(_ context.Context, id string) (models.Job, error) {
	return findPublished(SampleDataset().Jobs, id)
}

// SampleDataset returns a fresh copy of the demo jobs and candidates.
func SampleDataset() Dataset {
	return Dataset{
		Jobs: []models.Job{
			{
				ID:               "job-1",
				Title:            "Senior Software Engineer",
				Description:      "We are looking for an experienced software engineer proficient in React, Node.js, and cloud technologies to join our engineering team.",
				Requirements:     []string{"React", "Node.js", "TypeScript", "AWS", "5+ years experience"},
				Responsibilities: "Design and develop scalable web applications, collaborate with cross-functional teams, mentor junior developers.",
				Status:           models.JobStatusPublished,
			},
			{
				ID:               "job-2",
				Title:            "Product Manager",
				Description:      "Seeking a product manager to lead product strategy and roadmap planning for our SaaS platform.",
				Requirements:     []string{"3+ years product management", "SaaS experience", "User research", "Agile methodologies"},
				Responsibilities: "Define product vision, create roadmaps, work with engineering teams to deliver features.",
				Status:           models.JobStatusPublished,
			},
			{
				ID:               "job-3",
				Title:            "UX/UI Designer",
				Description:      "Join our design team to create beautiful, intuitive interfaces for our enterprise software products.",
				Requirements:     []string{"Figma", "User research", "Interaction design", "Design systems"},
				Responsibilities: "Create wireframes, prototypes, and visual designs. Conduct user research and testing.",
				Status:           models.JobStatusPublished,
			},
		},
		Candidates: []models.CandidateProfile{
			{
				ID:             "candidate-1",
				Name:           "John Smith",
				Email:          "john.smith@example.com",
				Bio:            "Software engineer with 6 years of experience in full-stack development using React, Node.js, and AWS.",
				EducationLevel: "Bachelor",
				EmploymentHistory: []models.Employment{
					{Company: "Tech Solutions Inc", Position: "Senior Developer", Description: "Led the development of React-based frontend applications and Node.js microservices."},
					{Company: "WebApps Co", Position: "JavaScript Developer", Description: "Built responsive web applications using modern JavaScript frameworks."},
				},
				Certifications: []models.Certification{
					{Name: "AWS Certified Developer", Issuer: "Amazon Web Services"},
				},
			},
			{
				ID:             "candidate-2",
				Name:           "Sarah Johnson",
				Email:          "sarah.johnson@example.com",
				Bio:            "Product manager with experience in SaaS products and agile methodologies.",
				EducationLevel: "Masters",
				EmploymentHistory: []models.Employment{
					{Company: "SaaS Platform Inc", Position: "Product Manager", Description: "Led product strategy and roadmap planning for enterprise SaaS platform."},
					{Company: "Software Solutions", Position: "Associate Product Manager", Description: "Assisted in feature prioritization and user research."},
				},
				Certifications: []models.Certification{
					{Name: "Certified Scrum Product Owner", Issuer: "Scrum Alliance"},
				},
			},
			{
				ID:             "candidate-3",
				Name:           "Michael Wong",
				Email:          "michael.wong@example.com",
				Bio:            "UI/UX designer specializing in creating intuitive interfaces and design systems.",
				EducationLevel: "Bachelor",
				EmploymentHistory: []models.Employment{
					{Company: "Design Agency", Position: "Senior UX Designer", Description: "Created wireframes, prototypes, and visual designs for enterprise clients."},
					{Company: "Tech Startup", Position: "UI Designer", Description: "Designed user interfaces for mobile and web applications."},
				},
				Certifications: []models.Certification{
					{Name: "UX Certification", Issuer: "Nielsen Norman Group"},
				},
			},
		},
	}
}
