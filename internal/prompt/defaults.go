package prompt

import "github.com/hyperengineering/ideaforge/internal/types"

// DefaultModel is used when neither the stored config nor the server config names a model.
const DefaultModel = "gpt-4o-mini"

// Task identifies one agent prompt.
type Task string

const (
	TaskPillars          Task = "pillars"
	TaskPersonas         Task = "personas"
	TaskFeatureMap       Task = "feature_map"
	TaskRiskRadar        Task = "risk_radar"
	TaskOpportunityScore Task = "opportunity_score"
	TaskSectionAnalysis  Task = "section_analysis"
	TaskDeepDive         Task = "deep_dive"
	TaskSectionReactions Task = "section_reactions"
	TaskImprove          Task = "improve"
	TaskIdeate           Task = "ideate"
	TaskBlueprintSection Task = "blueprint_section"
	TaskBuildPlan        Task = "build_plan"
)

// StageFor returns the task stage whose configuration drives task.
// Blueprint sections are driven by the stage matching their blueprint kind.
func StageFor(task Task) types.TaskStage {
	switch task {
	case TaskBuildPlan:
		return types.TaskStageBuild
	default:
		return types.TaskStageValidate
	}
}

// DefaultConfigs returns a fresh copy of the built-in per-stage configuration.
func DefaultConfigs() Defaults {
	return Defaults{
		types.TaskStageValidate: {
			Stage:        types.TaskStageValidate,
			Model:        DefaultModel,
			SystemPrompt: "You are a pragmatic startup analyst. You evaluate product ideas honestly and answer with compact JSON only, no prose and no markdown.",
			UserPrompt:   "Idea: {{idea_title}}\nSummary: {{idea_summary}}",
		},
		types.TaskStageBuild: {
			Stage:                 types.TaskStageBuild,
			Model:                 DefaultModel,
			SystemPrompt:          "You are a senior engineer planning the first shippable version of a product. Answer with compact JSON only.",
			UserPrompt:            "Project: {{project_title}}\nDescription: {{project_description}}\nMust-have features: {{must_features}}\n\nReturn {\"summary\": string, \"stack\": [string], \"milestones\": [string], \"prompts\": []}.",
			SystemPromptVibeCoder: "You help non-engineers build products with AI coding assistants. Answer with compact JSON only.",
			UserPromptVibeCoder:   "Project: {{project_title}}\nDescription: {{project_description}}\nMust-have features: {{must_features}}\n\nReturn {\"summary\": string, \"stack\": [string], \"milestones\": [string], \"prompts\": [string]} where prompts are copy-paste instructions for an AI coding assistant, one per milestone.",
		},
		types.TaskStageLaunch: {
			Stage:        types.TaskStageLaunch,
			Model:        DefaultModel,
			SystemPrompt: "You are a launch strategist for early-stage products. Answer with compact JSON only.",
			UserPrompt:   "Project: {{project_title}}\nDescription: {{project_description}}\nTarget personas: {{personas}}",
		},
		types.TaskStageMonetise: {
			Stage:        types.TaskStageMonetise,
			Model:        DefaultModel,
			SystemPrompt: "You are a pricing and monetisation advisor for early-stage products. Answer with compact JSON only.",
			UserPrompt:   "Project: {{project_title}}\nDescription: {{project_description}}\nTarget personas: {{personas}}",
		},
	}
}

var taskTemplates = map[Task]string{
	TaskPillars: `Score the idea on these seven pillars from 0 to 10: audienceFit, problemClarity, solutionStrength, competition, marketSize, feasibility, monetisation.
Return {"pillars": [{"id": string, "score": number, "strength": string, "weakness": string, "improvement": string}]}.`,

	TaskPersonas: `Pillar scores so far: {{pillars}}
Describe three distinct target personas.
Return {"personas": [{"name": string, "role": string, "goals": [string], "painPoints": [string], "quote": string}]}.`,

	TaskFeatureMap: `Personas: {{personas}}
Map candidate features for a first version using MoSCoW priorities.
Return {"must": [string], "should": [string], "could": [string], "avoid": [string]}.`,

	TaskRiskRadar: `Pillar scores: {{pillars}}
Must-have features: {{must_features}}
Rate each risk from 0 (low) to 10 (high).
Return {"market": number, "competition": number, "technical": number, "monetisation": number, "goToMarket": number, "commentary": string}.`,

	TaskOpportunityScore: `Pillar scores: {{pillars}}
Risk radar: {{risk_radar}}
Give an overall opportunity score from 0 to 100.
Return {"score": number, "breakdown": [{"label": string, "score": number}], "rationale": string}.`,

	TaskSectionAnalysis: `Analyse the "{{section}}" aspect of this idea.
Return {"summary": string, "insights": [{"label": string, "detail": string}]}.`,

	TaskDeepDive: `Current "{{section}}" analysis: {{section_summary}}
Go deeper: explain what matters most and list concrete next actions.
Return {"summary": string, "details": [string], "actions": [string]}.`,

	TaskSectionReactions: `Current "{{section}}" analysis: {{section_summary}}
Personas: {{personas}}
Write how each persona reacts to this analysis.
Return {"reactions": [{"persona": string, "sentiment": "positive"|"neutral"|"negative", "reaction": string}]}.`,

	TaskImprove: `Pillar scores: {{pillars}}
Opportunity score: {{opportunity_score}}
Rewrite the idea to address its weakest pillars.
Return {"improvedTitle": string, "pitch": string, "changes": [string]}.`,

	TaskIdeate: `Produce an ideation snapshot for this idea.
Return {"headline": string, "narrative": string, "quickTakes": [{"label": string, "value": string, "delta": string}], "pillars": [{"id": string, "score": number, "strength": string, "weakness": string, "improvement": string}], "suggestions": [string], "experiments": [{"title": string, "hypothesis": string}]}.
Use exactly these pillar ids: audienceFit, problemClarity, solutionStrength, competition, marketSize, feasibility, monetisation.`,

	TaskBlueprintSection: `Write the "{{section}}" section of the {{kind}} blueprint.
{{section_instructions}}`,
}

// BlueprintInstructions describes the JSON shape expected for each blueprint section.
var BlueprintInstructions = map[string]string{
	"messaging_framework":  `Return {"positioning": string, "valueProps": [string], "taglines": [string], "proofPoints": [string], "toneOfVoice": string}.`,
	"launch_channels":      `Return {"channels": [{"name": string, "why": string, "firstStep": string}]}.`,
	"tracking_metrics":     `Return {"northStar": string, "metrics": [{"name": string, "target": string}]}.`,
	"activation_blueprint": `Return {"ahaMoment": string, "steps": [string], "emails": [string]}.`,
	"pricing_plan":         `Return {"model": string, "tiers": [{"name": string, "price": string, "includes": [string]}]}.`,
	"offer_plan":           `Return {"offer": string, "bonuses": [string], "guarantee": string}.`,
	"revenue_experiments":  `Return {"experiments": [{"title": string, "hypothesis": string, "metric": string}]}.`,
	"retention_levers":     `Return {"levers": [{"name": string, "tactic": string}]}.`,
}
