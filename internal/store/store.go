package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/ats-matcher/internal/models"
)

const (
	DriverFile     = "file"
	DriverSQL      = "sql"
	DriverSupabase = "supabase"
	DriverSample   = "sample"
)

var ErrJobNotFound = errors.New("job not found")

// Store is the read-only source of jobs and candidates.
type Store interface {
	FetchPublishedJobs(ctx context.Context) ([]models.Job, error)
	FetchAllCandidates(ctx context.Context) ([]models.CandidateProfile, error)
	// GetJob returns a published job by id or ErrJobNotFound.
	GetJob(ctx context.Context, id string) (models.Job, error)
}

// Dataset is a full snapshot of jobs and candidates.
type Dataset struct {
	Jobs       []models.Job              `yaml:"jobs" json:"jobs"`
	Candidates []models.CandidateProfile `yaml:"candidates" json:"candidates"`
}

func publishedOnly(jobs []models.Job) []models.Job {
	out := make([]models.Job, 0, len(jobs))
	for _, j := range jobs {
		if j.IsPublished() {
			out = append(out, j)
		}
	}
	return out
}

func findPublished(jobs []models.Job, id string) (models.Job, error) {
	for _, j := range jobs {
		if j.ID == id && j.IsPublished() {
			return j, nil
		}
	}
	return models.Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
}
