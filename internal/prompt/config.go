package prompt

import (
	"strings"

	"github.com/hyperengineering/ideaforge/internal/types"
)

// Config is a fully resolved AI configuration for one task stage.
type Config struct {
	Stage                 types.TaskStage `json:"stage"`
	Model                 string          `json:"model"`
	SystemPrompt          string          `json:"systemPrompt"`
	UserPrompt            string          `json:"userPrompt"`
	SystemPromptVibeCoder string          `json:"systemPromptVibeCoder"`
	UserPromptVibeCoder   string          `json:"userPromptVibeCoder"`
}

// Defaults maps each task stage to its built-in configuration.
type Defaults map[types.TaskStage]Config

// Resolve merges a stored override onto the defaults for stage.
// For every field the order is: non-blank override, default, empty string.
// A nil override is not an error.
func Resolve(stage types.TaskStage, override *types.AIConfig, defaults Defaults) Config {
	def := defaults[stage]
	cfg := Config{Stage: stage}
	if override == nil {
		override = &types.AIConfig{}
	}
	cfg.Model = pick(override.Model, def.Model)
	cfg.SystemPrompt = pick(override.SystemPrompt, def.SystemPrompt)
	cfg.UserPrompt = pick(override.UserPrompt, def.UserPrompt)
	cfg.SystemPromptVibeCoder = pick(override.SystemPromptVibeCoder, def.SystemPromptVibeCoder)
	cfg.UserPromptVibeCoder = pick(override.UserPromptVibeCoder, def.UserPromptVibeCoder)
	return cfg
}

func pick(override *string, fallback string) string {
	if override != nil && strings.TrimSpace(*override) != "" {
		return *override
	}
	return fallback
}

// WithModel returns a copy of d where every stage that has no model, or only
// the built-in DefaultModel, uses model instead. A blank model changes nothing.
func (d Defaults) WithModel(model string) Defaults {
	out := make(Defaults, len(d))
	replace := strings.TrimSpace(model) != ""
	for stage, cfg := range d {
		if replace && (strings.TrimSpace(cfg.Model) == "" || cfg.Model == DefaultModel) {
			cfg.Model = model
		}
		out[stage] = cfg
	}
	return out
}

// Render builds the system and user messages for task. The stage's user
// prompt is a preamble placed before the task template; both are rendered
// with vars. When vibeCoder is set the vibe coder variants are used.
func Render(cfg Config, task Task, vars map[string]string, vibeCoder bool) (system, user string) {
	system, preamble := cfg.SystemPrompt, cfg.UserPrompt
	if vibeCoder {
		system, preamble = cfg.SystemPromptVibeCoder, cfg.UserPromptVibeCoder
	}

	parts := make([]string, 0, 2)
	if strings.TrimSpace(preamble) != "" {
		parts = append(parts, preamble)
	}
	if tmpl := taskTemplates[task]; tmpl != "" {
		parts = append(parts, tmpl)
	}
	return Substitute(system, vars), Substitute(strings.Join(parts, "\n\n"), vars)
}
