package store

import (
	"context"
	"encoding/json"

	"github.com/hyperengineering/ideaforge/internal/types"
)

// Store defines the interface contract for all persistence operations.
type Store interface {
	ProjectStore
	ReportStore
	IdeateStore
	BlueprintStore
	SettingsStore
	Close() error
}

// ProjectStore persists projects and their per-stage state.
type ProjectStore interface {
	CreateProject(ctx context.Context, p types.NewProject) (*types.Project, error)
	GetProject(ctx context.Context, id string) (*types.Project, error)
	// GetOwnedProject returns ErrNotFound when the project is missing or owned by someone else.
	GetOwnedProject(ctx context.Context, id, userID string) (*types.Project, error)
	ListProjects(ctx context.Context, userID string) ([]types.Project, error)
	UpdateProject(ctx context.Context, id string, upd types.ProjectUpdate) (*types.Project, error)
	ListStages(ctx context.Context, projectID string) ([]types.ProjectStage, error)
	UpsertStage(ctx context.Context, stage types.ProjectStage) (*types.ProjectStage, error)
}

// ReportStore persists validation reports. Section-level writes merge into
// the stored document and never touch sibling sections.
type ReportStore interface {
	CreateReport(ctx context.Context, report *types.ValidationReport) error
	GetReport(ctx context.Context, id string) (*types.ValidationReport, error)
	GetLatestReport(ctx context.Context, projectID string) (*types.ValidationReport, error)
	ListReports(ctx context.Context, projectID string) ([]types.ValidationReport, error)
	UpdateSectionResult(ctx context.Context, reportID string, section types.Section, result types.SectionResult) error
	UpdateDeepDive(ctx context.Context, reportID string, section types.Section, dd types.DeepDive) error
	UpdatePersonaReactions(ctx context.Context, reportID string, section types.Section, reactions []types.PersonaReaction) error
	UpdateReportPersonas(ctx context.Context, reportID string, personas []types.Persona) error
	UpdateFeatureMap(ctx context.Context, reportID string, fm types.FeatureMap) error
	UpdateIdeaEnhancement(ctx context.Context, reportID string, e types.IdeaEnhancement) error
	ToggleActionCompletion(ctx context.Context, reportID string, section types.Section, action string, completed bool) (*types.SectionResult, error)
}

// IdeateStore persists ideation snapshots.
type IdeateStore interface {
	CreateIdeateRun(ctx context.Context, run *types.IdeateRun) error
	GetLatestIdeateRun(ctx context.Context, projectID string) (*types.IdeateRun, error)
	UpdateIdeatePillar(ctx context.Context, runID string, index int, pillar types.Pillar) error
	UpdateSuggestion(ctx context.Context, runID string, index int, s types.Suggestion) error
	UpdateExperiment(ctx context.Context, runID string, index int, e types.Experiment) error
}

// BlueprintStore persists launch and monetise blueprints, one per project and kind.
type BlueprintStore interface {
	GetBlueprint(ctx context.Context, projectID string, kind types.BlueprintKind) (*types.Blueprint, error)
	SaveBlueprintSection(ctx context.Context, projectID, userID string, kind types.BlueprintKind, section string, content json.RawMessage) (*types.Blueprint, error)
	SetSectionCompletion(ctx context.Context, projectID, userID string, kind types.BlueprintKind, section string, completed bool) (*types.Blueprint, error)
}

// SettingsStore persists admin-managed AI configuration and stage toggles.
type SettingsStore interface {
	GetAIConfig(ctx context.Context, stage types.TaskStage) (*types.AIConfig, error)
	UpsertAIConfig(ctx context.Context, cfg types.AIConfig) (*types.AIConfig, error)
	ListStageSettings(ctx context.Context) ([]types.StageSetting, error)
	UpsertStageSetting(ctx context.Context, s types.StageSetting) (*types.StageSetting, error)
}
