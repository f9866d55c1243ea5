// Package api exposes the HTTP interface for the crawl service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jobwire/boardcrawler/internal/jobboard"
	"github.com/jobwire/boardcrawler/internal/metrics"
)

// crawlBudget bounds a single API-triggered crawl run. Runs are detached
// from the request, so this is the only thing that stops a hung site from
// pinning a goroutine forever.
const crawlBudget = 30 * time.Minute

// Server wires HTTP handlers to the crawl runner and stores.
type Server struct {
	router    chi.Router
	runner    *jobboard.Runner
	companies jobboard.CompanyProvider
	statuses  jobboard.StatusStore
	cfg       jobboard.Config
	logger    *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	runner *jobboard.Runner,
	companies jobboard.CompanyProvider,
	statuses jobboard.StatusStore,
	cfg jobboard.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		runner:    runner,
		companies: companies,
		statuses:  statuses,
		cfg:       cfg,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/crawls", s.startCrawl)
		r.Get("/companies/{company_id}/status", s.companyStatus)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if _, err := s.companies.Companies(r.Context(), 0, nil, ""); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store not ready")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type crawlRequest struct {
	CompanyID       int64   `json:"company_id"`
	ExcludedIDs     []int64 `json:"excluded_ids"`
	Resource        string  `json:"resource"`
	DescriptionOnly bool    `json:"description_only"`
}

// startCrawl kicks off a crawl run detached from the request so that slow
// sites do not hold the HTTP connection open. The caller gets a run ID back
// immediately and polls per-company status afterwards.
func (s *Server) startCrawl(w http.ResponseWriter, r *http.Request) {
	var req crawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.CompanyID < 0 {
		writeError(w, http.StatusBadRequest, "company_id must be >= 0")
		return
	}

	runID := uuid.NewString()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), crawlBudget)
		defer cancel()
		logger := s.logger.With(zap.String("run_id", runID))
		failed, err := s.runner.CrawlAll(ctx, s.companies,
			req.CompanyID, req.ExcludedIDs, req.Resource, req.DescriptionOnly)
		if err != nil {
			logger.Error("crawl run failed", zap.Error(err))
			return
		}
		logger.Info("crawl run finished", zap.Int("failed_companies", failed))
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"run_id": runID})
}

func (s *Server) companyStatus(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(chi.URLParam(r, "company_id"), 10, 64)
	if err != nil || companyID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid company_id")
		return
	}
	status, err := s.statuses.LatestStatus(r.Context(), companyID, s.cfg.OutputTable)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"company_id":    companyID,
		"success_count": status.SuccessCount,
		"failed_count":  status.FailedCount,
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("panic", rec))
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type requestIDKey struct{}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
