package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/FocuswithJustin/JuniperSearch/core/books"
	apperrors "github.com/FocuswithJustin/JuniperSearch/core/errors"
	"github.com/FocuswithJustin/JuniperSearch/core/search"
	"github.com/FocuswithJustin/JuniperSearch/internal/logging"
	"github.com/FocuswithJustin/JuniperSearch/internal/server"
	"github.com/FocuswithJustin/JuniperSearch/internal/validation"
)

// maxParamLength bounds free-text parameters other than the query.
const maxParamLength = 200

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Endpoint describes one route for the root listing.
type Endpoint struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

var endpoints = []Endpoint{
	{"GET", "/health", "Health check"},
	{"GET", "/search?q=&scope=&book=&limit=&offset=", "Full-text verse search"},
	{"GET", "/references?q=", "Parse a list of references"},
	{"GET", "/verses?ref=", "Verses for one reference"},
	{"GET", "/books?group=", "Book registry"},
	{"GET", "/stats", "Index statistics"},
	{"POST", "/index/rebuild", "Rebuild the index (async job)"},
	{"DELETE", "/index", "Clear the index"},
	{"GET", "/jobs", "List jobs"},
	{"GET", "/jobs/{id}", "Job status"},
	{"DELETE", "/jobs/{id}", "Cancel a job"},
	{"GET", "/ws", "Index event stream (websocket)"},
}

// handleRoot handles GET / - API info.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
		return
	}
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"name":      "Juniper Search API",
		"endpoints": endpoints,
	})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"index_built": s.svc.Stats().IndexBuilt,
		"ws_clients":  s.hub.ClientCount(),
	})
}

// handleSearch handles GET /search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	q := r.URL.Query()
	cfg := s.svc.Config()

	query := server.CleanParam(q.Get("q"), 0)
	if query == "" {
		respondError(w, http.StatusBadRequest, "MISSING_QUERY", "Query parameter q is required")
		return
	}

	scope, err := search.ParseScope(q.Get("scope"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_SCOPE", err.Error())
		return
	}
	limit, err := validation.ParseLimit(q.Get("limit"), cfg.DefaultLimit, cfg.MaxLimit)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	offset, err := validation.ParseOffset(q.Get("offset"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}

	resp, err := s.svc.Search(r.Context(), query, search.Options{
		Scope:  scope,
		Book:   server.CleanParam(q.Get("book"), maxParamLength),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondList(w, http.StatusOK, resp, resp.Total)
}

// handleReferences handles GET /references?q=.
func (s *Server) handleReferences(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	text := server.CleanParam(r.URL.Query().Get("q"), 0)
	if text == "" {
		respondError(w, http.StatusBadRequest, "MISSING_QUERY", "Query parameter q is required")
		return
	}
	if len(text) > s.svc.Config().MaxQueryLength {
		respondError(w, http.StatusBadRequest, "QUERY_TOO_LONG", "Reference list is too long")
		return
	}
	parsed := s.svc.ParseReferences(text)
	respondList(w, http.StatusOK, parsed, len(parsed.References))
}

// handleVerses handles GET /verses?ref=.
func (s *Server) handleVerses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	text := server.CleanParam(r.URL.Query().Get("ref"), maxParamLength)
	if text == "" {
		respondError(w, http.StatusBadRequest, "MISSING_PARAMS", "Query parameter ref is required")
		return
	}
	p, err := s.svc.Passage(r.Context(), text)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondList(w, http.StatusOK, p, len(p.Verses))
}

// handleBooks handles GET /books?group=.
func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	var group books.Group
	if raw := r.URL.Query().Get("group"); raw != "" {
		g, ok := books.ParseGroup(raw)
		if !ok {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "group must be one of canon, apocrypha, pseudepigrapha")
			return
		}
		group = g
	}
	list := s.svc.Books(group)
	respondList(w, http.StatusOK, list, len(list))
}

// handleStats handles GET /stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	respond(w, http.StatusOK, s.svc.Stats())
}

// handleIndex handles DELETE /index.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only DELETE is allowed")
		return
	}
	s.svc.Clear()
	respond(w, http.StatusOK, s.svc.Stats())
}

// handleRebuild handles POST /index/rebuild. The rebuild runs as a job;
// while one is active, further requests return it.
func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST is allowed")
		return
	}

	job, created := s.jobs.Create(JobKindRebuild)
	if !created {
		respond(w, http.StatusAccepted, job)
		return
	}
	s.jobs.Run(job, func(ctx context.Context) (*search.Stats, error) {
		if err := s.svc.Rebuild(ctx); err != nil {
			return nil, err
		}
		st := s.svc.Stats().Stats
		return &st, nil
	})
	logging.InfoContext(r.Context(), "index rebuild started", "job_id", job.ID)
	respond(w, http.StatusAccepted, job)
}

// respondServiceError maps service errors to status codes and error codes.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, validation.ErrEmptyQuery):
		respondError(w, http.StatusBadRequest, "MISSING_QUERY", err.Error())
	case errors.Is(err, validation.ErrQueryTooLong):
		respondError(w, http.StatusBadRequest, "QUERY_TOO_LONG", err.Error())
	case errors.Is(err, search.ErrInvalidScope):
		respondError(w, http.StatusBadRequest, "INVALID_SCOPE", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusServiceUnavailable, "REQUEST_CANCELLED", err.Error())
	case apperrors.Kind(err) == apperrors.KindCorpusUnavailable:
		logging.ErrorContext(r.Context(), "corpus unavailable", "error", err)
		respondError(w, http.StatusServiceUnavailable, "CORPUS_UNAVAILABLE", "The corpus could not be loaded")
	case apperrors.Kind(err) == apperrors.KindNotFound:
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case apperrors.Kind(err) == apperrors.KindInvalidInput:
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
	case apperrors.Kind(err) == apperrors.KindUnsupported:
		respondError(w, http.StatusNotImplemented, "UNSUPPORTED", err.Error())
	default:
		logging.ErrorContext(r.Context(), "request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func respond(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func respondList(w http.ResponseWriter, status int, data any, total int) {
	writeJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Total:     total,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Meta: &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to write response", "error", err)
	}
}
