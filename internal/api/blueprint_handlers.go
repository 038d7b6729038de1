package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/ideaforge/internal/types"
	"github.com/hyperengineering/ideaforge/internal/validation"
)

// blueprintParams reads and checks the {kind} and optional {sectionId} URL parameters.
func blueprintParams(w http.ResponseWriter, r *http.Request, withSection bool) (types.BlueprintKind, string, bool) {
	kind := types.BlueprintKind(chi.URLParam(r, "kind"))
	if _, ok := types.BlueprintSections[kind]; !ok {
		WriteProblem(w, r, http.StatusNotFound, "Unknown blueprint")
		return "", "", false
	}
	if !withSection {
		return kind, "", true
	}
	section := chi.URLParam(r, "sectionId")
	if !types.ValidBlueprintSection(kind, section) {
		WriteProblemWithErrors(w, r, "Unknown blueprint section", []validation.ValidationError{
			{Field: "sectionId", Message: "must be a section of the " + string(kind) + " blueprint"},
		})
		return "", "", false
	}
	return kind, section, true
}

// GetBlueprint handles GET /api/v1/projects/{id}/blueprints/{kind}
func (h *Handler) GetBlueprint(w http.ResponseWriter, r *http.Request) {
	p := MustProjectFromContext(r.Context())
	kind, _, ok := blueprintParams(w, r, false)
	if !ok {
		return
	}
	bp, err := h.workflow.GetBlueprint(r.Context(), p, kind)
	if err != nil {
		MapStoreError(w, r, "load blueprint", err)
		return
	}
	writeJSON(w, http.StatusOK, bp)
}

// GenerateBlueprintSection handles POST /api/v1/projects/{id}/blueprints/{kind}/sections/{sectionId}/generate
func (h *Handler) GenerateBlueprintSection(w http.ResponseWriter, r *http.Request) {
	p := MustProjectFromContext(r.Context())
	kind, section, ok := blueprintParams(w, r, true)
	if !ok || !spendGeneration(w, r) {
		return
	}
	bp, err := h.workflow.GenerateBlueprintSection(r.Context(), p, kind, section)
	if err != nil {
		MapStoreError(w, r, "generate blueprint section", err)
		return
	}
	writeJSON(w, http.StatusOK, bp)
}

// SetBlueprintCompletion handles PATCH /api/v1/projects/{id}/blueprints/{kind}/sections/{sectionId}
func (h *Handler) SetBlueprintCompletion(w http.ResponseWriter, r *http.Request) {
	p := MustProjectFromContext(r.Context())
	kind, section, ok := blueprintParams(w, r, true)
	if !ok {
		return
	}
	var req types.SectionCompletionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Completed == nil {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{
			{Field: "completed", Message: "is required"},
		})
		return
	}

	bp, err := h.workflow.SetBlueprintCompletion(r.Context(), p, kind, section, *req.Completed)
	if err != nil {
		MapStoreError(w, r, "update blueprint section", err)
		return
	}
	writeJSON(w, http.StatusOK, bp)
}

// GenerateBuildPlan handles POST /api/v1/projects/{id}/build/plan
func (h *Handler) GenerateBuildPlan(w http.ResponseWriter, r *http.Request) {
	p := MustProjectFromContext(r.Context())

	var req types.BuildPlanRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	if req.Mode != "" {
		if err := validation.ValidateEnum("mode", req.Mode, []types.BuildPlanMode{types.BuildPlanStandard, types.BuildPlanVibeCoder}); err != nil {
			WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{*err})
			return
		}
	}

	if !spendGeneration(w, r) {
		return
	}

	plan, err := h.workflow.GenerateBuildPlan(r.Context(), p, req.Mode)
	if err != nil {
		MapStoreError(w, r, "generate build plan", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
