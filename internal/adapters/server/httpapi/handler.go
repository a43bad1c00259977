// Package httpapi provides the read-only REST adapter for the preview server.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/hylla/nametag/internal/adapters/server/common"
)

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	preview common.PreviewService
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs one HTTP API adapter.
func NewHandler(preview common.PreviewService) *Handler {
	return &Handler{preview: preview}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeMethodNotAllowed(w, http.MethodGet, http.MethodHead)
		return
	}
	if h.preview == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "preview service is not configured",
		})
		return
	}

	path := normalizePath(r.URL.Path)
	switch path {
	case "summary":
		respond(w, func() (any, error) { return h.preview.Summary(r.Context()) })
		return
	case "competitors":
		h.handleListCompetitors(w, r)
		return
	case "pages":
		respond(w, func() (any, error) { return h.preview.ListPages(r.Context()) })
		return
	case "rounds":
		respond(w, func() (any, error) { return h.preview.ListRounds(r.Context()) })
		return
	case "diagnostics":
		respond(w, func() (any, error) { return h.preview.Diagnostics(r.Context()) })
		return
	}

	if id, ok := resolveItemID(path, "competitors/"); ok {
		respond(w, func() (any, error) { return h.preview.GetCompetitor(r.Context(), id) })
		return
	}
	if id, ok := resolveItemID(path, "pages/"); ok {
		respond(w, func() (any, error) { return h.preview.GetPage(r.Context(), id) })
		return
	}
	writeJSONError(w, http.StatusNotFound, APIError{
		Code:    "not_found",
		Message: "endpoint not found",
	})
}

// handleListCompetitors serves GET `/competitors`.
func (h *Handler) handleListCompetitors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := common.ListCompetitorsRequest{
		Query:   q.Get("q"),
		Country: q.Get("country"),
		Role:    q.Get("role"),
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, APIError{
				Code:    "invalid_request",
				Message: "limit must be an integer",
				Context: map[string]any{"limit": raw},
			})
			return
		}
		req.Limit = limit
	}
	respond(w, func() (any, error) {
		items, err := h.preview.ListCompetitors(r.Context(), req)
		if err != nil {
			return nil, err
		}
		return map[string]any{"items": items}, nil
	})
}

// respond writes the payload from fn or its mapped error.
func respond(w http.ResponseWriter, fn func() (any, error)) {
	payload, err := fn()
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// resolveItemID parses `{prefix}{n}` and returns n.
func resolveItemID(path, prefix string) (int, bool) {
	if !strings.HasPrefix(path, prefix) {
		return 0, false
	}
	raw := strings.TrimPrefix(path, prefix)
	if raw == "" || strings.Contains(raw, "/") {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")
	return path
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, common.ErrNotReady):
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "not_ready",
			Message: err.Error(),
			Hint:    "The snapshot is still being built; retry shortly.",
		})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}
