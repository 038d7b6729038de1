package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/ideaforge/internal/types"
	"github.com/hyperengineering/ideaforge/internal/validation"
	"github.com/hyperengineering/ideaforge/internal/workflow"
)

// ListReports handles GET /api/v1/validate?projectId=&latest=
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	p := MustProjectFromContext(r.Context())

	latest := false
	if v := r.URL.Query().Get("latest"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			WriteProblem(w, r, http.StatusBadRequest, "latest must be true or false")
			return
		}
		latest = b
	}

	reports, err := h.workflow.ListReports(r.Context(), p.ID, latest)
	if err != nil {
		MapStoreError(w, r, "list validation reports", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(reports))
}

// StartValidation handles POST /api/v1/validate
func (h *Handler) StartValidation(w http.ResponseWriter, r *http.Request) {
	var req types.StartValidationRequest
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

	report, err := h.workflow.StartValidationRun(r.Context(), workflow.StartRunInput{
		ProjectID: p.ID,
		UserID:    p.UserID,
		Idea:      req.Idea,
	})
	if err != nil {
		MapStoreError(w, r, "generate validation report", err)
		return
	}
	writeJSON(w, http.StatusCreated, types.StartValidationResponse{ReportID: report.ID, Report: report})
}

// ReportStatus handles GET /api/v1/validate/status?id=
func (h *Handler) ReportStatus(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		WriteProblem(w, r, http.StatusBadRequest, "id is required")
		return
	}
	report, err := h.workflow.ReportForUser(r.Context(), id, UserIDFromContext(r.Context()))
	if err != nil {
		MapStoreError(w, r, "load validation report", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// reportRef decodes a {projectId, reportId?} body, checks ownership and
// spends a generation token.
func (h *Handler) reportRef(w http.ResponseWriter, r *http.Request) (workflow.ReportRef, bool) {
	var req types.ReportRequest
	if !decodeJSON(w, r, &req) {
		return workflow.ReportRef{}, false
	}
	p := h.guard.Owned(w, r, req.ProjectID)
	if p == nil || !spendGeneration(w, r) {
		return workflow.ReportRef{}, false
	}
	return workflow.ReportRef{ProjectID: p.ID, ReportID: req.ReportID}, true
}

// sectionParam reads and checks the {section} URL parameter.
func sectionParam(w http.ResponseWriter, r *http.Request) (types.Section, bool) {
	section := chi.URLParam(r, "section")
	if !types.ValidSection(section) {
		WriteProblemWithErrors(w, r, "Unknown section", []validation.ValidationError{
			{Field: "section", Message: "must be a known report section"},
		})
		return "", false
	}
	return types.Section(section), true
}

// Improve handles POST /api/v1/validate/improve
func (h *Handler) Improve(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.reportRef(w, r)
	if !ok {
		return
	}
	e, err := h.workflow.Improve(r.Context(), ref)
	if err != nil {
		MapStoreError(w, r, "improve idea", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// ToggleAction handles POST /api/v1/validate/actions/toggle
func (h *Handler) ToggleAction(w http.ResponseWriter, r *http.Request) {
	var req types.ToggleActionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validation.ValidateToggleAction(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	result, err := h.workflow.ToggleAction(r.Context(), UserIDFromContext(r.Context()), req)
	if err != nil {
		MapStoreError(w, r, "update action", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// RegeneratePersonas handles POST /api/v1/validation/personas
func (h *Handler) RegeneratePersonas(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.reportRef(w, r)
	if !ok {
		return
	}
	personas, err := h.workflow.RegeneratePersonas(r.Context(), ref)
	if err != nil {
		MapStoreError(w, r, "generate personas", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"personas": nonNil(personas)})
}

// RegenerateFeatureMap handles POST /api/v1/validation/feature-map
func (h *Handler) RegenerateFeatureMap(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.reportRef(w, r)
	if !ok {
		return
	}
	fm, err := h.workflow.RegenerateFeatureMap(r.Context(), ref)
	if err != nil {
		MapStoreError(w, r, "generate feature map", err)
		return
	}
	writeJSON(w, http.StatusOK, fm)
}

// SectionAnalysis handles POST /api/v1/validation/sections/{section}
func (h *Handler) SectionAnalysis(w http.ResponseWriter, r *http.Request) {
	section, ok := sectionParam(w, r)
	if !ok {
		return
	}
	ref, ok := h.reportRef(w, r)
	if !ok {
		return
	}
	result, err := h.workflow.RunSectionAnalysis(r.Context(), ref, section)
	if err != nil {
		MapStoreError(w, r, "analyse section", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DeepDive handles POST /api/v1/validation/deep-dive/{section}
func (h *Handler) DeepDive(w http.ResponseWriter, r *http.Request) {
	section, ok := sectionParam(w, r)
	if !ok {
		return
	}
	ref, ok := h.reportRef(w, r)
	if !ok {
		return
	}
	dd, err := h.workflow.DeepDive(r.Context(), ref, section)
	if err != nil {
		MapStoreError(w, r, "generate deep dive", err)
		return
	}
	writeJSON(w, http.StatusOK, dd)
}

// SectionReactions handles POST /api/v1/validation/section-reactions/{section}
func (h *Handler) SectionReactions(w http.ResponseWriter, r *http.Request) {
	section, ok := sectionParam(w, r)
	if !ok {
		return
	}
	ref, ok := h.reportRef(w, r)
	if !ok {
		return
	}
	reactions, err := h.workflow.PersonaReactions(r.Context(), ref, section)
	if err != nil {
		MapStoreError(w, r, "generate persona reactions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reactions": nonNil(reactions)})
}
