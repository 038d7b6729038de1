package types

// CreateProjectRequest is the body of POST /projects.
type CreateProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpsertStageRequest is the body of POST /projects/{id}/stages.
type UpsertStageRequest struct {
	Stage  Stage          `json:"stage"`
	Status StageStatus    `json:"status"`
	Input  *StageDocument `json:"input,omitempty"`
	Output *StageDocument `json:"output,omitempty"`
}

// StartValidationRequest is the body of POST /validate.
type StartValidationRequest struct {
	ProjectID string `json:"projectId"`
	Idea      Idea   `json:"idea"`
}

// StartValidationResponse is returned by POST /validate.
type StartValidationResponse struct {
	ReportID string            `json:"reportId"`
	Report   *ValidationReport `json:"report"`
}

// ReportRequest addresses a project's report; the latest is used when ReportID is empty.
type ReportRequest struct {
	ProjectID string `json:"projectId"`
	ReportID  string `json:"reportId,omitempty"`
}

// ToggleActionRequest is the body of POST /validate/actions/toggle.
type ToggleActionRequest struct {
	ReportID   string `json:"reportId"`
	Section    string `json:"section"`
	ActionText string `json:"actionText"`
	Completed  *bool  `json:"completed"`
}

// IdeateRunRequest is the body of POST /ideate/run.
type IdeateRunRequest struct {
	ProjectID string `json:"projectId"`
	Idea      Idea   `json:"idea"`
}

// ProjectScopedRequest carries only the owning project.
type ProjectScopedRequest struct {
	ProjectID string `json:"projectId"`
}

// ApplySuggestionRequest is the body of POST /ideate/suggestions/{id}/apply.
type ApplySuggestionRequest struct {
	ProjectID string `json:"projectId"`
	Applied   *bool  `json:"applied"`
}

// UpdateExperimentRequest is the body of PATCH /ideate/experiments/{id}.
type UpdateExperimentRequest struct {
	ProjectID string           `json:"projectId"`
	Status    ExperimentStatus `json:"status"`
}

// SectionCompletionRequest is the body of PATCH .../sections/{sectionId}.
type SectionCompletionRequest struct {
	Completed *bool `json:"completed"`
}

// BuildPlanMode selects the standard or vibe coder build prompts.
type BuildPlanMode string

const (
	BuildPlanStandard  BuildPlanMode = "standard"
	BuildPlanVibeCoder BuildPlanMode = "vibe_coder"
)

// BuildPlanRequest is the body of POST /projects/{id}/build/plan.
type BuildPlanRequest struct {
	Mode BuildPlanMode `json:"mode"`
}

// StageSettingRequest is the body of POST /admin/stage-settings.
type StageSettingRequest struct {
	Stage    Stage  `json:"stage"`
	SubStage string `json:"subStage"`
	Enabled  *bool  `json:"enabled"`
}

// AIConfigRequest is the body of PUT /admin/ai-config/{stage}.
type AIConfigRequest struct {
	Model                 *string `json:"model"`
	SystemPrompt          *string `json:"systemPrompt"`
	UserPrompt            *string `json:"userPrompt"`
	SystemPromptVibeCoder *string `json:"systemPromptVibeCoder"`
	UserPromptVibeCoder   *string `json:"userPromptVibeCoder"`
}
