package store

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/ats-matcher/internal/models"
	"go.uber.org/zap"
)

const (
	restPath        = "/rest/v1"
	userAgent       = "spigell/ats-matcher"
	contentType     = "application/json"
	contentEncoding = "gzip"
	// Rows requested per page.
	defaultPageSize = 500
)

// SupabaseClient reads jobs and candidates from the Supabase PostgREST API.
type SupabaseClient struct {
	apiKey     string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	URL        string
	PageSize   int
}

type supabaseJob struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Requirements     []string `json:"requirements"`
	Responsibilities string   `json:"responsibilities"`
	Status           string   `json:"status"`
}

type supabaseCandidate struct {
	ID                string                 `json:"id"`
	FirstName         string                 `json:"first_name"`
	LastName          string                 `json:"last_name"`
	Email             string                 `json:"email"`
	Bio               string                 `json:"bio"`
	EducationLevel    string                 `json:"education_level"`
	EmploymentHistory []models.Employment    `json:"employment_history"`
	Certifications    []models.Certification `json:"certifications"`
}

type Item any

func NewSupabase(logger *zap.Logger, baseURL, apiKey string) (*SupabaseClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("supabase url is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("supabase api key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SupabaseClient{
		apiKey: strings.TrimSpace(apiKey),
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: userAgent,
		URL:       baseURL,
		PageSize:  defaultPageSize,
	}, nil
}

func (c *SupabaseClient) FetchPublishedJobs(ctx context.Context) ([]models.Job, error) {
	return c.fetchJobs(ctx, url.Values{
		"status": {"eq." + models.JobStatusPublished},
	})
}

func (c *SupabaseClient) GetJob(ctx context.Context, id string) (models.Job, error) {
	jobs, err := c.fetchJobs(ctx, url.Values{
		"id":     {"eq." + id},
		"status": {"eq." + models.JobStatusPublished},
	})
	if err != nil {
		return models.Job{}, err
	}
	return findPublished(jobs, id)
}

func (c *SupabaseClient) FetchAllCandidates(ctx context.Context) ([]models.CandidateProfile, error) {
	items, err := c.GetItems(ctx, "candidates", url.Values{"select": {"*"}, "order": {"id.asc"}})
	if err != nil {
		return nil, fmt.Errorf("fetching candidates: %w", err)
	}

	var rows []supabaseCandidate
	if err := decodeItems(items, &rows); err != nil {
		return nil, fmt.Errorf("decoding candidates: %w", err)
	}

	candidates := make([]models.CandidateProfile, 0, len(rows))
	for _, r := range rows {
		candidates = append(candidates, models.CandidateProfile{
			ID:                r.ID,
			Name:              strings.TrimSpace(r.FirstName + " " + r.LastName),
			Email:             r.Email,
			Bio:               r.Bio,
			EducationLevel:    r.EducationLevel,
			EmploymentHistory: r.EmploymentHistory,
			Certifications:    r.Certifications,
		})
	}
	return candidates, nil
}

func (c *SupabaseClient) fetchJobs(ctx context.Context, filter url.Values) ([]models.Job, error) {
	q := url.Values{"select": {"*"}, "order": {"id.asc"}}
	for k, v := range filter {
		q[k] = v
	}

	items, err := c.GetItems(ctx, "jobs", q)
	if err != nil {
		return nil, fmt.Errorf("fetching jobs: %w", err)
	}

	var rows []supabaseJob
	if err := decodeItems(items, &rows); err != nil {
		return nil, fmt.Errorf("decoding jobs: %w", err)
	}

	jobs := make([]models.Job, 0, len(rows))
	for _, r := range rows {
		jobs = append(jobs, models.Job{
			ID:               r.ID,
			Title:            r.Title,
			Description:      r.Description,
			Requirements:     r.Requirements,
			Responsibilities: r.Responsibilities,
			Status:           r.Status,
		})
	}
	return jobs, nil
}

// GetItems makes GET requests to a table and returns rows from all pages.
func (c *SupabaseClient) GetItems(ctx context.Context, table string, q url.Values) ([]Item, error) {
	var items []Item

	pageSize := c.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	for offset := 0; ; offset += pageSize {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL+restPath+"/"+table, nil)
		if err != nil {
			return nil, err
		}

		req = c.setHeaders(req)
		req.URL.RawQuery = withPage(q, offset, pageSize).Encode()

		resp, err := c.request(req)
		if err != nil {
			return nil, err
		}

		page, err := c.parseItemResponse(resp)
		if err != nil {
			return nil, err
		}

		items = append(items, page...)

		if len(page) < pageSize {
			break
		}
		c.logger.Debug("additional request needed", zap.String("table", table), zap.Int("fetched", len(items)))
	}

	return items, nil
}

func (c *SupabaseClient) parseItemResponse(resp *http.Response) ([]Item, error) {
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		body = gz
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, fmt.Errorf("bad status: %s: %s", resp.Status, apiMessage(data))
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}

	return items, nil
}

func (c *SupabaseClient) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	return c.HTTPClient.Do(req)
}

func (c *SupabaseClient) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

func withPage(q url.Values, offset, limit int) url.Values {
	out := make(url.Values, len(q)+2)
	for k, v := range q {
		out[k] = v
	}
	out.Set("offset", strconv.Itoa(offset))
	out.Set("limit", strconv.Itoa(limit))
	return out
}

// apiMessage extracts the PostgREST error message when there is one.
func apiMessage(data []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(data))
}

func decodeItems(items []Item, result any) error {
	cfg := &mapstructure.DecoderConfig{
		Result:           result,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return decoder.Decode(items)
}
