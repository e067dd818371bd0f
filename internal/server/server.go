package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"reviewdesk/internal/app"
	"reviewdesk/internal/metrics"
	"reviewdesk/internal/ratelimit"
	"reviewdesk/internal/util"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App            *app.App
	SubmitLimiter  *ratelimit.FixedWindowLimiter
	TrustedProxies *util.TrustedProxies
}

// Server exposes the review feedback HTTP endpoints.
type Server struct {
	app            *app.App
	submitLimiter  *ratelimit.FixedWindowLimiter
	trustedProxies *util.TrustedProxies
	mux            *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:            cfg.App,
		submitLimiter:  cfg.SubmitLimiter,
		trustedProxies: cfg.TrustedProxies,
		mux:            http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler with the middleware chain applied.
func (s *Server) Router() http.Handler {
	handler := metrics.WithMetrics(s.mux)
	handler = util.WithRequestLog("reviewdesk", handler)
	handler = util.WithRequestID(handler)
	return util.WithSecurityHeaders(util.WithCORS(handler))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleRoot)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.Handle("/metrics", metrics.Handler())

	s.mux.HandleFunc("/api/submit-review", s.handleSubmitReview)
	s.mux.HandleFunc("/api/reviews", s.handleReviews)
	s.mux.HandleFunc("/api/reviews/", s.handleReviewByID)
	s.mux.HandleFunc("/api/analytics", s.handleAnalytics)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Review Feedback System API is running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type submitRequest struct {
	Rating     int    `json:"rating"`
	ReviewText string `json:"review_text"`
}

type submitResponse struct {
	AIResponse string `json:"ai_response"`
	Success    bool   `json:"success"`
}

// handleSubmitReview accepts a review, generates AI content, and persists
// the record. Validation and workflow failures are reported in the response
// body with success=false; only malformed requests use transport errors.
func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.submitLimiter != nil && !s.submitLimiter.Allow(util.ClientIP(r, s.trustedProxies)) {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}
	var req submitRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		metrics.RecordSubmission("invalid_json")
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	review, err := s.app.SubmitReview(r.Context(), req.Rating, req.ReviewText)
	if err != nil {
		if errors.Is(err, app.ErrInvalidRating) || errors.Is(err, app.ErrEmptyReview) {
			metrics.RecordSubmission("validation_failed")
			writeJSON(w, http.StatusOK, submitResponse{AIResponse: err.Error(), Success: false})
			return
		}
		metrics.RecordSubmission("error")
		util.LoggerFromContext(r.Context()).Error("submit review failed", "err", err)
		writeJSON(w, http.StatusOK, submitResponse{AIResponse: "Error: " + err.Error(), Success: false})
		return
	}
	metrics.RecordSubmission("accepted")
	writeJSON(w, http.StatusOK, submitResponse{AIResponse: review.AIResponse, Success: true})
}

func (s *Server) handleReviews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	reviews, err := s.app.ListReviews()
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("list reviews failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reviews": reviews,
		"total":   len(reviews),
	})
}

// handleReviewByID serves GET /api/reviews/{id} and
// POST /api/reviews/{id}/status.
func (s *Server) handleReviewByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/reviews/")
	if rest == "" || strings.Contains(strings.TrimSuffix(rest, "/status"), "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if id, ok := strings.CutSuffix(rest, "/status"); ok {
		s.updateStatus(w, r, id)
		return
	}
	s.getReview(w, r, rest)
}

func (s *Server) getReview(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	review, err := s.app.GetReview(id)
	if err != nil {
		if errors.Is(err, app.ErrReviewNotFound) {
			// Not-found is a structured response, not a transport error.
			writeJSON(w, http.StatusOK, map[string]string{"error": "Review not found"})
			return
		}
		util.LoggerFromContext(r.Context()).Error("get review failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status == "" {
		var body struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&body); err == nil {
			status = strings.TrimSpace(body.Status)
		}
	}
	if status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}
	if err := s.app.UpdateStatus(id, status); err != nil {
		if errors.Is(err, app.ErrReviewNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "Review not found"})
			return
		}
		util.LoggerFromContext(r.Context()).Error("update status failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Status updated"})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	analytics, err := s.app.Analytics()
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("analytics failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
