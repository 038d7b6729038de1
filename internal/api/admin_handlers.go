package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/ideaforge/internal/prompt"
	"github.com/hyperengineering/ideaforge/internal/store"
	"github.com/hyperengineering/ideaforge/internal/types"
	"github.com/hyperengineering/ideaforge/internal/validation"
)

// AIConfigResponse shows the stored override next to the configuration the
// workflow will actually use.
type AIConfigResponse struct {
	Stored    *types.AIConfig `json:"stored"`
	Effective prompt.Config   `json:"effective"`
}

func taskStageParam(w http.ResponseWriter, r *http.Request) (types.TaskStage, bool) {
	stage := chi.URLParam(r, "stage")
	if !types.ValidTaskStage(stage) {
		WriteProblem(w, r, http.StatusNotFound, "Unknown AI config stage")
		return "", false
	}
	return types.TaskStage(stage), true
}

func (h *Handler) writeAIConfig(w http.ResponseWriter, r *http.Request, stage types.TaskStage) {
	stored, err := h.store.GetAIConfig(r.Context(), stage)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		MapStoreError(w, r, "load ai config", err)
		return
	}
	effective, err := h.workflow.ResolveConfig(r.Context(), stage)
	if err != nil {
		MapStoreError(w, r, "load ai config", err)
		return
	}
	writeJSON(w, http.StatusOK, AIConfigResponse{Stored: stored, Effective: effective})
}

// GetAIConfig handles GET /api/v1/admin/ai-config/{stage}
func (h *Handler) GetAIConfig(w http.ResponseWriter, r *http.Request) {
	stage, ok := taskStageParam(w, r)
	if !ok {
		return
	}
	h.writeAIConfig(w, r, stage)
}

// PutAIConfig handles PUT /api/v1/admin/ai-config/{stage}. The body replaces
// the stored override; omitted fields fall back to the defaults.
func (h *Handler) PutAIConfig(w http.ResponseWriter, r *http.Request) {
	stage, ok := taskStageParam(w, r)
	if !ok {
		return
	}
	var req types.AIConfigRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validation.ValidateAIConfig(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	_, err := h.store.UpsertAIConfig(r.Context(), types.AIConfig{
		Stage:                 stage,
		Model:                 req.Model,
		SystemPrompt:          req.SystemPrompt,
		UserPrompt:            req.UserPrompt,
		SystemPromptVibeCoder: req.SystemPromptVibeCoder,
		UserPromptVibeCoder:   req.UserPromptVibeCoder,
	})
	if err != nil {
		MapStoreError(w, r, "save ai config", err)
		return
	}
	h.writeAIConfig(w, r, stage)
}

// ListStageSettings handles GET /api/v1/admin/stage-settings
func (h *Handler) ListStageSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.ListStageSettings(r.Context())
	if err != nil {
		MapStoreError(w, r, "list stage settings", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(settings))
}

// UpsertStageSetting handles POST /api/v1/admin/stage-settings
func (h *Handler) UpsertStageSetting(w http.ResponseWriter, r *http.Request) {
	var req types.StageSettingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validation.ValidateStageSetting(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	setting, err := h.store.UpsertStageSetting(r.Context(), types.StageSetting{
		Stage:    req.Stage,
		SubStage: req.SubStage,
		Enabled:  *req.Enabled,
	})
	if err != nil {
		MapStoreError(w, r, "save stage setting", err)
		return
	}
	writeJSON(w, http.StatusOK, setting)
}
