package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/ideaforge/internal/types"
	"github.com/hyperengineering/ideaforge/internal/validation"
	"github.com/hyperengineering/ideaforge/internal/workflow"
)

// CreateIdeateRun handles POST /api/v1/ideate/run
func (h *Handler) CreateIdeateRun(w http.ResponseWriter, r *http.Request) {
	var req types.IdeateRunRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validation.ValidateIdea(req.ProjectID, req.Idea); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}
	p := h.guard.Owned(w, r, req.ProjectID)
	if p == nil || !spendGeneration(w, r) {
		return
	}

	run, err := h.workflow.CreateIdeateRun(r.Context(), workflow.IdeateInput{
		ProjectID: p.ID,
		UserID:    p.UserID,
		Idea:      req.Idea,
	})
	if err != nil {
		MapStoreError(w, r, "generate ideation snapshot", err)
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

// LatestIdeateRun handles GET /api/v1/ideate/run?projectId=
func (h *Handler) LatestIdeateRun(w http.ResponseWriter, r *http.Request) {
	p := MustProjectFromContext(r.Context())
	run, err := h.workflow.LatestIdeateRun(r.Context(), p.ID)
	if err != nil {
		MapStoreError(w, r, "load ideation snapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// RegeneratePillar handles POST /api/v1/ideate/pillar/{pillarId}/regenerate
func (h *Handler) RegeneratePillar(w http.ResponseWriter, r *http.Request) {
	pillarID := chi.URLParam(r, "pillarId")
	if !types.ValidPillar(pillarID) {
		WriteProblemWithErrors(w, r, "Unknown pillar", []validation.ValidationError{
			{Field: "pillarId", Message: "must be a known pillar"},
		})
		return
	}
	var req types.ProjectScopedRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p := h.guard.Owned(w, r, req.ProjectID)
	if p == nil {
		return
	}

	pillar, err := h.workflow.RegeneratePillar(r.Context(), p.ID, types.PillarID(pillarID))
	if err != nil {
		MapStoreError(w, r, "regenerate pillar", err)
		return
	}
	writeJSON(w, http.StatusOK, pillar)
}

// ApplySuggestion handles POST /api/v1/ideate/suggestions/{suggestionId}/apply
func (h *Handler) ApplySuggestion(w http.ResponseWriter, r *http.Request) {
	var req types.ApplySuggestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p := h.guard.Owned(w, r, req.ProjectID)
	if p == nil {
		return
	}
	applied := req.Applied == nil || *req.Applied

	sg, err := h.workflow.ApplySuggestion(r.Context(), p.ID, chi.URLParam(r, "suggestionId"), applied)
	if err != nil {
		MapStoreError(w, r, "update suggestion", err)
		return
	}
	writeJSON(w, http.StatusOK, sg)
}

// UpdateExperiment handles PATCH /api/v1/ideate/experiments/{experimentId}
func (h *Handler) UpdateExperiment(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateExperimentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !types.ValidExperimentStatus(string(req.Status)) {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{
			{Field: "status", Message: "must be one of draft, validating, scheduled"},
		})
		return
	}
	p := h.guard.Owned(w, r, req.ProjectID)
	if p == nil {
		return
	}

	e, err := h.workflow.UpdateExperiment(r.Context(), p.ID, chi.URLParam(r, "experimentId"), req.Status)
	if err != nil {
		MapStoreError(w, r, "update experiment", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}
