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

// BuildPlanSubStage is the stage-setting key that toggles build plan generation.
const BuildPlanSubStage = "plan"

// GenerateBuildPlan produces a build plan for the project and records it as
// the build stage output. Vibe coder mode uses the vibe coder prompt variants.
func (s *Service) GenerateBuildPlan(ctx context.Context, p *types.Project, mode types.BuildPlanMode) (*types.BuildPlan, error) {
	if mode == "" {
		mode = types.BuildPlanStandard
	}
	if err := s.requireEnabled(ctx, types.StageBuild, BuildPlanSubStage); err != nil {
		return nil, err
	}

	var must []string
	r, err := s.store.GetLatestReport(ctx, p.ID)
	switch {
	case err == nil:
		must = r.FeatureMap.Must
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("load latest report: %w", err)
	}

	vars := projectVars(p)
	vars["must_features"] = describeList(must)

	raw, err := s.generate(ctx, types.TaskStageBuild, prompt.TaskBuildPlan, vars, mode == types.BuildPlanVibeCoder)
	if err != nil {
		return nil, err
	}
	plan := parse.BuildPlan(string(mode), raw)

	data, err := json.Marshal(map[string]any{"mode": mode, "milestones": plan.Milestones})
	if err != nil {
		return nil, fmt.Errorf("marshal build output: %w", err)
	}
	_, err = s.store.UpsertStage(ctx, types.ProjectStage{
		ProjectID: p.ID,
		UserID:    p.UserID,
		Stage:     types.StageBuild,
		Status:    types.StageStatusInProgress,
		Output:    &types.StageDocument{Version: types.StageDocumentVersion, Stage: types.StageBuild, Data: data},
	})
	if err != nil {
		return nil, fmt.Errorf("store build output: %w", err)
	}
	return &plan, nil
}
