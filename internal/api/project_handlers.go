package api

import (
	"net/http"

	"github.com/hyperengineering/ideaforge/internal/types"
	"github.com/hyperengineering/ideaforge/internal/validation"
)

// ListProjects handles GET /api/v1/projects
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		MapStoreError(w, r, "list projects", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(projects))
}

// CreateProject handles POST /api/v1/projects
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req types.CreateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validation.ValidateCreateProject(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	p, err := h.store.CreateProject(r.Context(), types.NewProject{
		UserID:      UserIDFromContext(r.Context()),
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		MapStoreError(w, r, "create project", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetProject handles GET /api/v1/projects/{id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MustProjectFromContext(r.Context()))
}

// UpdateProject handles PATCH /api/v1/projects/{id}
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	p := MustProjectFromContext(r.Context())

	var req types.ProjectUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validation.ValidateProjectUpdate(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	updated, err := h.store.UpdateProject(r.Context(), p.ID, req)
	if err != nil {
		MapStoreError(w, r, "update project", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ListStages handles GET /api/v1/projects/{id}/stages
func (h *Handler) ListStages(w http.ResponseWriter, r *http.Request) {
	p := MustProjectFromContext(r.Context())
	stages, err := h.store.ListStages(r.Context(), p.ID)
	if err != nil {
		MapStoreError(w, r, "list stages", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(stages))
}

// UpsertStage handles POST /api/v1/projects/{id}/stages
func (h *Handler) UpsertStage(w http.ResponseWriter, r *http.Request) {
	p := MustProjectFromContext(r.Context())

	var req types.UpsertStageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validation.ValidateUpsertStage(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	stage, err := h.store.UpsertStage(r.Context(), types.ProjectStage{
		ProjectID: p.ID,
		Stage:     req.Stage,
		UserID:    p.UserID,
		Input:     req.Input,
		Output:    req.Output,
		Status:    req.Status,
	})
	if err != nil {
		MapStoreError(w, r, "save stage", err)
		return
	}
	writeJSON(w, http.StatusOK, stage)
}
