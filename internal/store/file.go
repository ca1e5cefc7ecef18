package store

import (
	"context"
	"fmt"
	"os"

	"github.com/spigell/ats-matcher/internal/models"
	"gopkg.in/yaml.v3"
)

// FileStore reads a YAML (or JSON) dataset from disk on every call.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() (*Dataset, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %q: %w", s.path, err)
	}

	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parsing dataset %q: %w", s.path, err)
	}

	return &ds, nil
}

func (s *FileStore) FetchPublishedJobs(_ context.Context) ([]models.Job, error) {
	ds, err := s.load()
	if err != nil {
		return nil, err
	}
	return publishedOnly(ds.Jobs), nil
}

func (s *FileStore) FetchAllCandidates(_ context.Context) ([]models.CandidateProfile, error) {
	ds, err := s.load()
	if err != nil {
		return nil, err
	}
	return ds.Candidates, nil
}

func (s *FileStore) GetJob(_ context.Context, id string) (models.Job, error) {
	ds, err := s.load()
	if err != nil {
		return models.Job{}, err
	}
	return findPublished(ds.Jobs, id)
}
