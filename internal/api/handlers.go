package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hyperengineering/ideaforge/internal/store"
	"github.com/hyperengineering/ideaforge/internal/types"
	"github.com/hyperengineering/ideaforge/internal/workflow"
)

// maxBodyBytes bounds request bodies; prompts are the largest legitimate payload.
const maxBodyBytes = 1 << 20

// pinger is implemented by stores that can report connection health.
type pinger interface {
	Ping(ctx context.Context) error
}

// Handler implements the API handlers
type Handler struct {
	store    store.Store
	workflow *workflow.Service
	guard    *Guard
	model    string
	version  string
}

// NewHandler creates a new Handler. model is the default LLM model reported by /health.
func NewHandler(s store.Store, svc *workflow.Service, model, version string) *Handler {
	return &Handler{
		store:    s,
		workflow: svc,
		guard:    NewGuard(s),
		model:    model,
		version:  version,
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			WriteProblem(w, r, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
	}

	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:   "healthy",
		Version:  h.version,
		LLMModel: h.model,
	})
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// decodeJSON reads the request body into dst, writing a 400 problem on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			WriteProblem(w, r, http.StatusBadRequest, "Request body is required")
		case errors.As(err, &maxErr):
			WriteProblem(w, r, http.StatusBadRequest, "Request body too large")
		default:
			WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		}
		return false
	}
	return true
}

// nonNil returns an empty slice for nil so lists encode as [].
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
