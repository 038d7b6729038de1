package prompt

import (
	"strings"
	"testing"

	"github.com/hyperengineering/ideaforge/internal/types"
)

func strPtr(s string) *string { return &s }

func TestResolve_NilOverrideUsesDefaults(t *testing.T) {
	defaults := DefaultConfigs()

	cfg := Resolve(types.TaskStageValidate, nil, defaults)

	want := defaults[types.TaskStageValidate]
	if cfg.Model != want.Model {
		t.Errorf("Model = %q, want %q", cfg.Model, want.Model)
	}
	if cfg.SystemPrompt != want.SystemPrompt {
		t.Errorf("SystemPrompt = %q, want default", cfg.SystemPrompt)
	}
	if cfg.Stage != types.TaskStageValidate {
		t.Errorf("Stage = %q", cfg.Stage)
	}
}

func TestResolve_FieldPrecedence(t *testing.T) {
	defaults := Defaults{
		types.TaskStageBuild: {
			Model:                 "default-model",
			SystemPrompt:          "default system",
			UserPrompt:            "default user",
			SystemPromptVibeCoder: "default vibe system",
		},
	}
	override := &types.AIConfig{
		Stage:               types.TaskStageBuild,
		Model:               strPtr("custom-model"),
		SystemPrompt:        strPtr("   "),
		UserPrompt:          nil,
		UserPromptVibeCoder: strPtr("custom vibe user"),
	}

	cfg := Resolve(types.TaskStageBuild, override, defaults)

	tests := []struct {
		field, got, want string
	}{
		{"Model", cfg.Model, "custom-model"},
		{"SystemPrompt (blank override)", cfg.SystemPrompt, "default system"},
		{"UserPrompt (nil override)", cfg.UserPrompt, "default user"},
		{"SystemPromptVibeCoder", cfg.SystemPromptVibeCoder, "default vibe system"},
		{"UserPromptVibeCoder", cfg.UserPromptVibeCoder, "custom vibe user"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.field, tt.got, tt.want)
		}
	}
}

func TestResolve_UnknownStageFallsBackToEmpty(t *testing.T) {
	cfg := Resolve(types.TaskStage("design"), nil, DefaultConfigs())
	if cfg.Model != "" || cfg.SystemPrompt != "" || cfg.UserPrompt != "" {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestResolve_DoesNotMutateDefaults(t *testing.T) {
	defaults := DefaultConfigs()
	before := defaults[types.TaskStageLaunch].Model

	Resolve(types.TaskStageLaunch, &types.AIConfig{Model: strPtr("other")}, defaults)

	if defaults[types.TaskStageLaunch].Model != before {
		t.Error("Resolve mutated the defaults table")
	}
}

func TestDefaultConfigs_CoverEveryTaskStage(t *testing.T) {
	defaults := DefaultConfigs()
	for _, stage := range types.TaskStages {
		cfg, ok := defaults[stage]
		if !ok {
			t.Errorf("no default for stage %q", stage)
			continue
		}
		if cfg.Model == "" || cfg.SystemPrompt == "" {
			t.Errorf("stage %q default is missing model or system prompt", stage)
		}
	}
}

func TestDefaults_WithModel(t *testing.T) {
	d := Defaults{
		types.TaskStageValidate: {Model: ""},
		types.TaskStageBuild:    {Model: "kept"},
		types.TaskStageLaunch:   {Model: DefaultModel},
	}

	out := d.WithModel("server-model")

	if out[types.TaskStageValidate].Model != "server-model" {
		t.Errorf("blank model not filled: %q", out[types.TaskStageValidate].Model)
	}
	if out[types.TaskStageBuild].Model != "kept" {
		t.Errorf("explicit model overwritten: %q", out[types.TaskStageBuild].Model)
	}
	if out[types.TaskStageLaunch].Model != "server-model" {
		t.Errorf("built-in model not replaced: %q", out[types.TaskStageLaunch].Model)
	}
	if d[types.TaskStageValidate].Model != "" {
		t.Error("WithModel mutated receiver")
	}
}

func TestRender_PreambleAndTask(t *testing.T) {
	cfg := Config{
		SystemPrompt: "sys for {{idea_title}}",
		UserPrompt:   "Idea: {{idea_title}}",
	}

	system, user := Render(cfg, TaskSectionAnalysis, map[string]string{
		"idea_title": "Plant Pal",
		"section":    "market",
	}, false)

	if system != "sys for Plant Pal" {
		t.Errorf("system = %q", system)
	}
	if !strings.HasPrefix(user, "Idea: Plant Pal\n\n") {
		t.Errorf("user prompt missing preamble: %q", user)
	}
	if !strings.Contains(user, `"market"`) {
		t.Errorf("user prompt missing section: %q", user)
	}
}

func TestRender_VibeCoderVariant(t *testing.T) {
	cfg := Config{
		SystemPrompt:          "standard",
		UserPrompt:            "standard user",
		SystemPromptVibeCoder: "vibe",
		UserPromptVibeCoder:   "vibe user {{project_title}}",
	}

	system, user := Render(cfg, TaskBuildPlan, map[string]string{"project_title": "X"}, true)

	if system != "vibe" {
		t.Errorf("system = %q, want vibe", system)
	}
	if user != "vibe user X" {
		t.Errorf("user = %q, want %q", user, "vibe user X")
	}
}

func TestStageFor(t *testing.T) {
	if StageFor(TaskBuildPlan) != types.TaskStageBuild {
		t.Error("build plan should use build stage")
	}
	if StageFor(TaskPillars) != types.TaskStageValidate {
		t.Error("pillars should use validate stage")
	}
}
