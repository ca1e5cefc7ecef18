package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spigell/ats-matcher/internal/filtering"
	"github.com/spigell/ats-matcher/internal/logger"
	"github.com/spigell/ats-matcher/internal/matching"
	"github.com/spigell/ats-matcher/internal/models"
	"github.com/spigell/ats-matcher/internal/store"
	"go.uber.org/zap"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Matcher runs a full scoring pass for one job.
type Matcher interface {
	MatchCandidates(ctx context.Context, job models.Job, candidates []models.CandidateProfile) (*matching.Report, error)
}

type Config struct {
	Version string
	// Filters seed every request. Query parameters override minimum score and top.
	Filters filtering.Config
}

type Server struct {
	store   store.Store
	matcher Matcher
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time
}

type MatchResponse struct {
	Results []models.MatchResult        `json:"results"`
	Summary matching.Summary            `json:"summary"`
	Invalid []matching.InvalidCandidate `json:"invalid"`
	Message string                      `json:"message"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func New(st store.Store, matcher Matcher, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{store: st, matcher: matcher, cfg: cfg, logger: logger, now: time.Now}
}

// Routes returns the HTTP handler for the API.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.health)
	r.Get("/jobs", s.listJobs)
	r.Get("/jobs/{jobID}/matches", s.matchJob)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"version":   s.cfg.Version,
	})
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.FetchPublishedJobs(r.Context())
	if err != nil {
		s.logger.Error("fetching published jobs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load jobs")
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) matchJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	limit, err := intParam(r, "limit", DefaultLimit)
	if err != nil || limit < 1 || limit > MaxLimit {
		writeError(w, http.StatusBadRequest, "limit must be an integer between 1 and 100")
		return
	}
	minScore, err := floatParam(r, "min_score", s.cfg.Filters.MinimumScore)
	if err != nil || math.IsNaN(minScore) || minScore < 0 || minScore > 100 {
		writeError(w, http.StatusBadRequest, "min_score must be a number between 0 and 100")
		return
	}

	log := s.logger.With(zap.String(logger.FieldJobID, jobID), zap.String(logger.FieldRequestID, middleware.GetReqID(r.Context())))

	job, err := s.store.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		log.Error("loading job", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load job")
		return
	}

	candidates, err := s.store.FetchAllCandidates(r.Context())
	if err != nil {
		log.Error("loading candidates", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load candidates")
		return
	}

	report, err := s.matcher.MatchCandidates(r.Context(), job, candidates)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusUnprocessableEntity, verr.Error())
			return
		}
		log.Error("matching candidates", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to match candidates")
		return
	}

	fcfg := s.cfg.Filters
	fcfg.MinimumScore = minScore
	fcfg.Top = limit
	steps := filtering.Default(fcfg)
	for _, step := range steps {
		if err := step.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	results, err := filtering.Run(r.Context(), filtering.Deps{Logger: log}, steps, report.Results)
	if err != nil {
		log.Error("filtering matches", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to filter matches")
		return
	}

	resp := MatchResponse{
		Results: results,
		Summary: report.Summary,
		Invalid: report.Invalid,
		Message: report.Summary.Message(),
	}
	if resp.Results == nil {
		resp.Results = []models.MatchResult{}
	}
	if resp.Invalid == nil {
		resp.Invalid = []matching.InvalidCandidate{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(started)),
			zap.String(logger.FieldRequestID, middleware.GetReqID(r.Context())),
		)
	})
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func floatParam(r *http.Request, name string, fallback float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
