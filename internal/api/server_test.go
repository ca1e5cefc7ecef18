package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spigell/ats-matcher/internal/filtering"
	"github.com/spigell/ats-matcher/internal/matching"
	"github.com/spigell/ats-matcher/internal/models"
	"github.com/spigell/ats-matcher/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct {
	store.SampleStore
	err error
}

func (s brokenStore) FetchPublishedJobs(context.Context) ([]models.Job, error) {
	return nil, s.err
}

func (s brokenStore) FetchAllCandidates(context.Context) ([]models.CandidateProfile, error) {
	return nil, s.err
}

type matcherFunc func(ctx context.Context, job models.Job, candidates []models.CandidateProfile) (*matching.Report, error)

func (f matcherFunc) MatchCandidates(ctx context.Context, job models.Job, candidates []models.CandidateProfile) (*matching.Report, error) {
	return f(ctx, job, candidates)
}

func newTestServer(st store.Store, m Matcher, cfg Config) http.Handler {
	if m == nil {
		m = matching.NewOrchestrator(nil, matching.Config{Concurrency: 2}, nil)
	}
	return New(st, m, cfg, nil).Routes()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

func TestHealth(t *testing.T) {
	s := New(store.SampleStore{}, nil, Config{Version: "1.2.3"}, nil)
	s.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	rec := get(t, s.Routes(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "2024-01-02T03:04:05Z", body["timestamp"])
	assert.Equal(t, "1.2.3", body["version"])
}

func TestListJobs(t *testing.T) {
	rec := get(t, newTestServer(store.SampleStore{}, nil, Config{}), "/jobs")
	require.Equal(t, http.StatusOK, rec.Code)

	var jobs []models.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
	require.Len(t, jobs, 3)
	for _, j := range jobs {
		assert.True(t, j.IsPublished(), j.ID)
	}
}

func TestListJobsStoreFailure(t *testing.T) {
	rec := get(t, newTestServer(brokenStore{err: errors.New("down")}, nil, Config{}), "/jobs")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to load jobs", decodeDetail(t, rec))
}

func TestMatchJob(t *testing.T) {
	h := newTestServer(store.SampleStore{}, nil, Config{})

	rec := get(t, h, "/jobs/job-1/matches?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var body MatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 2)
	assert.Equal(t, "job-1", body.Summary.JobID)
	assert.Equal(t, 3, body.Summary.Total)
	assert.Equal(t, 3, body.Summary.Heuristic)
	assert.Equal(t, 0, body.Summary.AI)
	assert.Equal(t, "Successfully matched 3 candidates using fallback algorithm", body.Message)
	assert.NotNil(t, body.Invalid)
	assert.GreaterOrEqual(t, body.Results[0].OverallScore, body.Results[1].OverallScore)
	for _, r := range body.Results {
		assert.Equal(t, models.ProvenanceHeuristic, r.Provenance)
	}
}

func TestMatchJobDefaultLimitAndMinScore(t *testing.T) {
	h := newTestServer(store.SampleStore{}, nil, Config{})

	rec := get(t, h, "/jobs/job-1/matches")
	require.Equal(t, http.StatusOK, rec.Code)
	var all MatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all.Results, 3)

	rec = get(t, h, "/jobs/job-1/matches?min_score=100")
	require.Equal(t, http.StatusOK, rec.Code)
	var none MatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &none))
	for _, r := range none.Results {
		assert.Equal(t, 100, r.OverallScore)
	}
	assert.NotNil(t, none.Results)
}

func TestMatchJobExcludedCandidates(t *testing.T) {
	h := newTestServer(store.SampleStore{}, nil, Config{Filters: filtering.Config{ExcludeCandidates: []string{"candidate-1"}}})

	rec := get(t, h, "/jobs/job-1/matches")
	require.Equal(t, http.StatusOK, rec.Code)

	var body MatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 2)
	for _, r := range body.Results {
		assert.NotEqual(t, "candidate-1", r.CandidateID)
	}
}

func TestMatchJobBadParams(t *testing.T) {
	h := newTestServer(store.SampleStore{}, nil, Config{})

	for _, q := range []string{"limit=0", "limit=101", "limit=ten", "min_score=-1", "min_score=101", "min_score=abc", "min_score=NaN"} {
		t.Run(q, func(t *testing.T) {
			rec := get(t, h, "/jobs/job-1/matches?"+q)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decodeDetail(t, rec))
		})
	}
}

func TestMatchJobNotFound(t *testing.T) {
	rec := get(t, newTestServer(store.SampleStore{}, nil, Config{}), "/jobs/unknown/matches")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Job not found", decodeDetail(t, rec))
}

func TestMatchJobFailures(t *testing.T) {
	tests := []struct {
		name    string
		store   store.Store
		matcher Matcher
		status  int
	}{
		{
			name:   "candidates unavailable",
			store:  brokenStore{err: errors.New("timeout")},
			status: http.StatusInternalServerError,
		},
		{
			name:  "invalid job",
			store: store.SampleStore{},
			matcher: matcherFunc(func(context.Context, models.Job, []models.CandidateProfile) (*matching.Report, error) {
				return nil, fmt.Errorf("match candidates: %w", &models.ValidationError{Entity: "job", ID: "job-1", Field: "requirements[0]", Reason: "must not be blank"})
			}),
			status: http.StatusUnprocessableEntity,
		},
		{
			name:  "matcher failure",
			store: store.SampleStore{},
			matcher: matcherFunc(func(context.Context, models.Job, []models.CandidateProfile) (*matching.Report, error) {
				return nil, context.Canceled
			}),
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestServer(tt.store, tt.matcher, Config{}), "/jobs/job-1/matches")
			require.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decodeDetail(t, rec))
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	rec := get(t, newTestServer(store.SampleStore{}, nil, Config{}), "/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", decodeDetail(t, rec))
}
