package workflow

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/lo"

	"github.com/hyperengineering/ideaforge/internal/parse"
	"github.com/hyperengineering/ideaforge/internal/prompt"
	"github.com/hyperengineering/ideaforge/internal/store"
	"github.com/hyperengineering/ideaforge/internal/types"
)

// PillarRegenerationStep is added to a pillar's score on each regeneration.
const PillarRegenerationStep = 0.3

// IdeateInput identifies the project and idea to snapshot.
type IdeateInput struct {
	ProjectID string
	UserID    string
	Idea      types.Idea
}

// CreateIdeateRun generates and stores a fresh ideation snapshot. Ideation
// prompts use the validate stage configuration.
func (s *Service) CreateIdeateRun(ctx context.Context, in IdeateInput) (*types.IdeateRun, error) {
	raw, err := s.generate(ctx, types.TaskStageValidate, prompt.TaskIdeate, ideaVars(in.Idea), false)
	if err != nil {
		return nil, err
	}
	snap := parse.Ideate(raw)

	run := &types.IdeateRun{
		ProjectID:  in.ProjectID,
		UserID:     in.UserID,
		Headline:   snap.Headline,
		Narrative:  snap.Narrative,
		QuickTakes: snap.QuickTakes,
		Pillars:    snap.Pillars,
		Suggestions: lo.Map(snap.Suggestions, func(text string, _ int) types.Suggestion {
			return types.Suggestion{ID: ulid.Make().String(), Text: text}
		}),
		Experiments: lo.Map(snap.Experiments, func(d parse.ExperimentDraft, _ int) types.Experiment {
			return types.Experiment{
				ID:         ulid.Make().String(),
				Title:      d.Title,
				Hypothesis: d.Hypothesis,
				Status:     types.ExperimentDraft,
			}
		}),
	}
	if err := s.store.CreateIdeateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("store ideate run: %w", err)
	}
	s.logger.Info("ideate run created", "project_id", in.ProjectID, "run_id", run.ID)
	return run, nil
}

// LatestIdeateRun returns the project's current snapshot.
func (s *Service) LatestIdeateRun(ctx context.Context, projectID string) (*types.IdeateRun, error) {
	return s.store.GetLatestIdeateRun(ctx, projectID)
}

// RegeneratePillar deterministically refreshes one pillar of the latest
// snapshot and stores it in place.
func (s *Service) RegeneratePillar(ctx context.Context, projectID string, id types.PillarID) (*types.Pillar, error) {
	run, err := s.store.GetLatestIdeateRun(ctx, projectID)
	if err != nil {
		return nil, err
	}
	_, index, ok := lo.FindIndexOf(run.Pillars, func(p types.Pillar) bool { return p.ID == id })
	if !ok {
		return nil, fmt.Errorf("pillar %s: %w", id, store.ErrNotFound)
	}

	next := RegeneratePillarScore(run.Pillars[index])
	if err := s.store.UpdateIdeatePillar(ctx, run.ID, index, next); err != nil {
		return nil, fmt.Errorf("store pillar %s: %w", id, err)
	}
	return &next, nil
}

// RegeneratePillarScore raises the score by PillarRegenerationStep, capped at
// the maximum, and records one new opportunity and risk, keeping only the
// most recent notes.
func RegeneratePillarScore(p types.Pillar) types.Pillar {
	score := math.Min(types.MaxPillarScore, p.Score+PillarRegenerationStep)
	p.Score = math.Round(parse.Clamp(score, types.MinPillarScore, types.MaxPillarScore)*10) / 10

	label := p.Label
	if label == "" {
		label = types.PillarLabels[p.ID]
	}
	focus := strings.ToLower(label)

	opportunity := fmt.Sprintf("At %.1f/10, lean into %s", p.Score, focus)
	if p.Improvement != "" {
		opportunity += ": " + p.Improvement
	}
	risk := fmt.Sprintf("At %.1f/10, %s can still slip", p.Score, focus)
	if p.Weakness != "" {
		risk += ": " + p.Weakness
	}

	p.Opportunities = keepRecent(append(append([]string{}, p.Opportunities...), opportunity), types.MaxPillarNotes)
	p.Risks = keepRecent(append(append([]string{}, p.Risks...), risk), types.MaxPillarNotes)
	return p
}

func keepRecent(items []string, n int) []string {
	if len(items) > n {
		items = items[len(items)-n:]
	}
	return items
}

// ApplySuggestion sets the applied flag of a suggestion on the latest snapshot.
func (s *Service) ApplySuggestion(ctx context.Context, projectID, suggestionID string, applied bool) (*types.Suggestion, error) {
	run, err := s.store.GetLatestIdeateRun(ctx, projectID)
	if err != nil {
		return nil, err
	}
	sg, index, ok := lo.FindIndexOf(run.Suggestions, func(sg types.Suggestion) bool { return sg.ID == suggestionID })
	if !ok {
		return nil, fmt.Errorf("suggestion %s: %w", suggestionID, store.ErrNotFound)
	}

	sg.Applied = applied
	if err := s.store.UpdateSuggestion(ctx, run.ID, index, sg); err != nil {
		return nil, fmt.Errorf("store suggestion: %w", err)
	}
	return &sg, nil
}

// UpdateExperiment changes the status of an experiment on the latest snapshot.
func (s *Service) UpdateExperiment(ctx context.Context, projectID, experimentID string, status types.ExperimentStatus) (*types.Experiment, error) {
	run, err := s.store.GetLatestIdeateRun(ctx, projectID)
	if err != nil {
		return nil, err
	}
	e, index, ok := lo.FindIndexOf(run.Experiments, func(e types.Experiment) bool { return e.ID == experimentID })
	if !ok {
		return nil, fmt.Errorf("experiment %s: %w", experimentID, store.ErrNotFound)
	}

	e.Status = status
	if err := s.store.UpdateExperiment(ctx, run.ID, index, e); err != nil {
		return nil, fmt.Errorf("store experiment: %w", err)
	}
	return &e, nil
}
