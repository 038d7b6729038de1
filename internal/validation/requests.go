package validation

import (
	"github.com/hyperengineering/ideaforge/internal/types"
)

// Field limits for user-supplied text.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxActionLength      = 1000
	MaxPromptLength      = 20000
	MaxSubStageLength    = 100
)

var stageStatuses = []types.StageStatus{
	types.StageStatusPending, types.StageStatusInProgress, types.StageStatusCompleted,
}

// ValidateCreateProject checks a new project's fields.
func ValidateCreateProject(req types.CreateProjectRequest) []ValidationError {
	var c Collector
	if err := ValidateRequired("title", req.Title); err != nil {
		c.Add(err)
	} else {
		c.Add(ValidateText("title", req.Title, MaxTitleLength))
	}
	c.Add(ValidateText("description", req.Description, MaxDescriptionLength))
	return c.Errors()
}

// ValidateProjectUpdate checks optional project changes. Progress must lie in [0, 100].
func ValidateProjectUpdate(req types.ProjectUpdate) []ValidationError {
	var c Collector
	if req.Title == nil && req.Description == nil && req.Progress == nil {
		c.Add(&ValidationError{Field: "body", Message: "at least one of title, description, progress is required"})
	}
	if req.Title != nil {
		if err := ValidateRequired("title", *req.Title); err != nil {
			c.Add(err)
		} else {
			c.Add(ValidateText("title", *req.Title, MaxTitleLength))
		}
	}
	if req.Description != nil {
		c.Add(ValidateText("description", *req.Description, MaxDescriptionLength))
	}
	if req.Progress != nil {
		c.Add(ValidateRange("progress", *req.Progress, 0, 100))
	}
	return c.Errors()
}

// ValidateUpsertStage checks a stage upsert, including both stage documents.
func ValidateUpsertStage(req types.UpsertStageRequest) []ValidationError {
	var c Collector
	c.Add(ValidateEnum("stage", req.Stage, types.Stages))
	if req.Status != "" {
		c.Add(ValidateEnum("status", req.Status, stageStatuses))
	}
	if c.HasErrors() {
		return c.Errors()
	}
	if req.Input != nil {
		c.Add(prefixed("input", ValidateStageDocument(req.Stage, req.Input)))
	}
	if req.Output != nil {
		c.Add(prefixed("output", ValidateStageDocument(req.Stage, req.Output)))
	}
	return c.Errors()
}

func prefixed(prefix string, err *ValidationError) *ValidationError {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: prefix + "." + err.Field, Message: err.Message}
}

// ValidateIdea checks an idea submitted for validation or ideation.
func ValidateIdea(projectID string, idea types.Idea) []ValidationError {
	var c Collector
	c.Add(ValidateRequired("projectId", projectID))
	if err := ValidateRequired("idea.title", idea.Title); err != nil {
		c.Add(err)
	} else {
		c.Add(ValidateText("idea.title", idea.Title, MaxTitleLength))
	}
	c.Add(ValidateText("idea.summary", idea.Summary, MaxDescriptionLength))
	return c.Errors()
}

// ValidateToggleAction checks a completed-action toggle.
func ValidateToggleAction(req types.ToggleActionRequest) []ValidationError {
	var c Collector
	c.Add(ValidateRequired("reportId", req.ReportID))
	if err := ValidateRequired("section", req.Section); err != nil {
		c.Add(err)
	} else {
		c.Add(ValidateEnum("section", types.Section(req.Section), types.Sections))
	}
	if err := ValidateRequired("actionText", req.ActionText); err != nil {
		c.Add(err)
	} else {
		c.Add(ValidateText("actionText", req.ActionText, MaxActionLength))
	}
	if req.Completed == nil {
		c.Add(&ValidationError{Field: "completed", Message: "is required"})
	}
	return c.Errors()
}

// ValidateStageSetting checks an admin stage-setting upsert.
func ValidateStageSetting(req types.StageSettingRequest) []ValidationError {
	var c Collector
	c.Add(ValidateEnum("stage", req.Stage, types.Stages))
	if err := ValidateRequired("subStage", req.SubStage); err != nil {
		c.Add(err)
	} else {
		c.Add(ValidateText("subStage", req.SubStage, MaxSubStageLength))
	}
	if req.Enabled == nil {
		c.Add(&ValidationError{Field: "enabled", Message: "is required"})
	}
	return c.Errors()
}

// ValidateAIConfig checks an admin AI config update.
func ValidateAIConfig(req types.AIConfigRequest) []ValidationError {
	var c Collector
	fields := []struct {
		name  string
		value *string
		max   int
	}{
		{"model", req.Model, MaxTitleLength},
		{"systemPrompt", req.SystemPrompt, MaxPromptLength},
		{"userPrompt", req.UserPrompt, MaxPromptLength},
		{"systemPromptVibeCoder", req.SystemPromptVibeCoder, MaxPromptLength},
		{"userPromptVibeCoder", req.UserPromptVibeCoder, MaxPromptLength},
	}
	for _, f := range fields {
		if f.value != nil {
			c.Add(ValidateText(f.name, *f.value, f.max))
		}
	}
	return c.Errors()
}
