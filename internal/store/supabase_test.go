package store

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupabaseFetchPublishedJobs(t *testing.T) {
	t.Parallel()

	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/jobs", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "eq.published", r.URL.Query().Get("status"))

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		pages = append(pages, r.URL.Query().Get("offset"))

		rows := []map[string]any{}
		switch offset {
		case 0:
			rows = append(rows,
				map[string]any{"id": "job-1", "title": "Engineer", "requirements": []string{"Go"}, "status": "published", "created_at": "2024-01-01T00:00:00Z"},
				map[string]any{"id": 2, "title": "Numeric id", "requirements": nil, "status": "published"},
			)
		case 2:
			rows = append(rows, map[string]any{"id": "job-3", "title": "Last", "status": "published"})
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		assert.NoError(t, json.NewEncoder(gz).Encode(rows))
	}))
	t.Cleanup(srv.Close)

	client, err := NewSupabase(nil, srv.URL+"/", "secret")
	require.NoError(t, err)
	client.PageSize = 2

	jobs, err := client.FetchPublishedJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	require.Equal(t, []string{"0", "2"}, pages)
	require.Equal(t, []string{"Go"}, jobs[0].Requirements)
	require.Equal(t, "2", jobs[1].ID)
	require.Equal(t, "job-3", jobs[2].ID)
}

func TestSupabaseFetchAllCandidates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/candidates", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"id": "candidate-1",
			"first_name": "John",
			"last_name": "Smith",
			"bio": "React developer",
			"education_level": "Bachelor",
			"employment_history": [{"company": "Tech Solutions Inc", "position": "Senior Developer"}],
			"certifications": [{"name": "AWS Certified Developer", "issuer": "Amazon Web Services"}],
			"location": "San Francisco, CA"
		}]`))
	}))
	t.Cleanup(srv.Close)

	client, err := NewSupabase(nil, srv.URL, "secret")
	require.NoError(t, err)

	candidates, err := client.FetchAllCandidates(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, "John Smith", candidates[0].Name)
	require.Equal(t, "Senior Developer", candidates[0].EmploymentHistory[0].Position)
	require.Equal(t, "Amazon Web Services", candidates[0].Certifications[0].Issuer)
}

func TestSupabaseErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") == "eq.missing" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "Invalid API key"}`))
	}))
	t.Cleanup(srv.Close)

	client, err := NewSupabase(nil, srv.URL, "bad")
	require.NoError(t, err)

	_, err = client.FetchPublishedJobs(context.Background())
	require.ErrorContains(t, err, "Invalid API key")

	_, err = client.GetJob(context.Background(), "missing")
	require.ErrorIs(t, err, ErrJobNotFound)

	_, err = NewSupabase(nil, "", "key")
	require.Error(t, err)
	_, err = NewSupabase(nil, srv.URL, " ")
	require.Error(t, err)
}
