package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hyperengineering/ideaforge/internal/parse"
	"github.com/hyperengineering/ideaforge/internal/prompt"
	"github.com/hyperengineering/ideaforge/internal/store"
	"github.com/hyperengineering/ideaforge/internal/types"
)

func blueprintStage(kind types.BlueprintKind) (types.Stage, types.TaskStage) {
	if kind == types.BlueprintMonetise {
		return types.StageMonetise, types.TaskStageMonetise
	}
	return types.StageLaunch, types.TaskStageLaunch
}

// GetBlueprint returns the project's blueprint, or an empty unsaved one when
// nothing has been generated or completed yet.
func (s *Service) GetBlueprint(ctx context.Context, p *types.Project, kind types.BlueprintKind) (*types.Blueprint, error) {
	bp, err := s.store.GetBlueprint(ctx, p.ID, kind)
	if errors.Is(err, store.ErrNotFound) {
		return &types.Blueprint{
			ProjectID:         p.ID,
			UserID:            p.UserID,
			Kind:              kind,
			SectionCompletion: map[string]bool{},
			Sections:          map[string]json.RawMessage{},
		}, nil
	}
	return bp, err
}

// latestPersonas returns the personas of the project's latest report, if any.
func (s *Service) latestPersonas(ctx context.Context, projectID string) ([]types.Persona, error) {
	r, err := s.store.GetLatestReport(ctx, projectID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.Personas, nil
}

// GenerateBlueprintSection fills one blueprint section from the model using
// the configuration of the blueprint's stage.
func (s *Service) GenerateBlueprintSection(ctx context.Context, p *types.Project, kind types.BlueprintKind, section string) (*types.Blueprint, error) {
	if !types.ValidBlueprintSection(kind, section) {
		return nil, fmt.Errorf("%w: %q for %s", store.ErrInvalidSection, section, kind)
	}
	stage, taskStage := blueprintStage(kind)
	if err := s.requireEnabled(ctx, stage, section); err != nil {
		return nil, err
	}
	personas, err := s.latestPersonas(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("load personas: %w", err)
	}

	vars := projectVars(p)
	vars["personas"] = describePersonas(personas)
	vars["kind"] = string(kind)
	vars["section"] = section
	vars["section_instructions"] = prompt.BlueprintInstructions[section]

	raw, err := s.generate(ctx, taskStage, prompt.TaskBlueprintSection, vars, false)
	if err != nil {
		return nil, err
	}

	bp, err := s.store.SaveBlueprintSection(ctx, p.ID, p.UserID, kind, section, parse.BlueprintSection(section, raw))
	if err != nil {
		return nil, fmt.Errorf("store blueprint section: %w", err)
	}
	s.logger.Info("blueprint section generated", "project_id", p.ID, "kind", kind, "section", section)
	return bp, nil
}

// SetBlueprintCompletion marks a blueprint section complete or incomplete.
func (s *Service) SetBlueprintCompletion(ctx context.Context, p *types.Project, kind types.BlueprintKind, section string, completed bool) (*types.Blueprint, error) {
	return s.store.SetSectionCompletion(ctx, p.ID, p.UserID, kind, section, completed)
}
