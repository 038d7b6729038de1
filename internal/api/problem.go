package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hyperengineering/ideaforge/internal/llm"
	"github.com/hyperengineering/ideaforge/internal/store"
	"github.com/hyperengineering/ideaforge/internal/validation"
	"github.com/hyperengineering/ideaforge/internal/workflow"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

type problemType struct {
	typeURI string
	title   string
}

// problemTypes maps HTTP status codes to RFC 7807 type URIs and titles.
var problemTypes = map[int]problemType{
	http.StatusUnauthorized: {
		typeURI: "https://ideaforge.dev/errors/unauthorized",
		title:   "Unauthorized",
	},
	http.StatusBadRequest: {
		typeURI: "https://ideaforge.dev/errors/bad-request",
		title:   "Bad Request",
	},
	http.StatusNotFound: {
		typeURI: "https://ideaforge.dev/errors/not-found",
		title:   "Not Found",
	},
	http.StatusInternalServerError: {
		typeURI: "https://ideaforge.dev/errors/internal-error",
		title:   "Internal Server Error",
	},
	http.StatusServiceUnavailable: {
		typeURI: "https://ideaforge.dev/errors/service-unavailable",
		title:   "Service Unavailable",
	},
	http.StatusGatewayTimeout: {
		typeURI: "https://ideaforge.dev/errors/generation-timeout",
		title:   "Gateway Timeout",
	},
	http.StatusConflict: {
		typeURI: "https://ideaforge.dev/errors/conflict",
		title:   "Conflict",
	},
	http.StatusForbidden: {
		typeURI: "https://ideaforge.dev/errors/forbidden",
		title:   "Forbidden",
	},
	http.StatusTooManyRequests: {
		typeURI: "https://ideaforge.dev/errors/rate-limit",
		title:   "Too Many Requests",
	},
}

// validationProblem is the type used for field-level errors.
var validationProblem = problemType{
	typeURI: "https://ideaforge.dev/errors/validation-error",
	title:   "Validation Error",
}

func lookupProblemType(status int) problemType {
	if pt, ok := problemTypes[status]; ok {
		return pt
	}
	return problemType{
		typeURI: "https://ideaforge.dev/errors/unknown",
		title:   http.StatusText(status),
	}
}

// WriteProblem writes an RFC 7807 Problem Details response.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	pt := lookupProblemType(status)
	p := Problem{
		Type:     pt.typeURI,
		Title:    pt.title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("failed to encode problem response", "error", err)
	}
}

// ProblemWithErrors extends Problem with validation error details.
type ProblemWithErrors struct {
	Problem
	Errors []validation.ValidationError `json:"errors,omitempty"`
}

// WriteProblemWithErrors writes a 400 Problem Details response with field errors.
func WriteProblemWithErrors(w http.ResponseWriter, r *http.Request, detail string, errs []validation.ValidationError) {
	p := ProblemWithErrors{
		Problem: Problem{
			Type:     validationProblem.typeURI,
			Title:    validationProblem.title,
			Status:   http.StatusBadRequest,
			Detail:   detail,
			Instance: r.URL.Path,
		},
		Errors: errs,
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("failed to encode problem response", "error", err)
	}
}

// WriteProblemConflict writes a 409 Conflict problem response.
func WriteProblemConflict(w http.ResponseWriter, r *http.Request, detail string) {
	WriteProblem(w, r, http.StatusConflict, detail)
}

// WriteProblemForbidden writes a 403 Forbidden problem response.
func WriteProblemForbidden(w http.ResponseWriter, r *http.Request, detail string) {
	WriteProblem(w, r, http.StatusForbidden, detail)
}

// MapStoreError converts domain errors to Problem Details responses. action
// names the failed operation in the generic 500 detail ("generate deep dive").
func MapStoreError(w http.ResponseWriter, r *http.Request, action string, err error) {
	var runErr *workflow.StartValidationRunError
	switch {
	case errors.Is(err, store.ErrNotFound):
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
	case errors.Is(err, store.ErrSectionNotFound):
		WriteProblemConflict(w, r, "Section has no baseline analysis yet")
	case errors.Is(err, store.ErrIndexOutOfRange):
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
	case errors.Is(err, store.ErrInvalidSection):
		WriteProblem(w, r, http.StatusBadRequest, "Unknown section")
	case errors.Is(err, store.ErrInvalidDocument):
		WriteProblem(w, r, http.StatusBadRequest, "Invalid stage document")
	case errors.Is(err, workflow.ErrStageDisabled):
		WriteProblemConflict(w, r, "This stage is disabled")
	case errors.As(err, &runErr):
		slog.Error("validation run failed",
			"step", runErr.Step,
			"error", runErr.Err,
			"request_id", GetRequestID(r.Context()),
		)
		detail := "Failed to generate validation report"
		if runErr.Status == http.StatusGatewayTimeout {
			detail = "Validation report generation timed out"
		}
		WriteProblem(w, r, runErr.Status, detail)
	case errors.Is(err, llm.ErrGenerationFailed):
		slog.Error("generation failed", "action", action, "error", err, "request_id", GetRequestID(r.Context()))
		WriteProblem(w, r, http.StatusInternalServerError, "Failed to "+action)
	default:
		// Never expose internal error details to client
		slog.Error("request failed", "action", action, "error", err, "request_id", GetRequestID(r.Context()))
		WriteProblem(w, r, http.StatusInternalServerError, "Failed to "+action)
	}
}
