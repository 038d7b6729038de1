package workflow

import (
	"context"
	"fmt"

	"github.com/hyperengineering/ideaforge/internal/parse"
	"github.com/hyperengineering/ideaforge/internal/prompt"
	"github.com/hyperengineering/ideaforge/internal/store"
	"github.com/hyperengineering/ideaforge/internal/types"
)

// ReportRef addresses a report of an owned project. An empty ReportID
// selects the project's latest report.
type ReportRef struct {
	ProjectID string
	ReportID  string
}

// resolveReport loads the referenced report, treating a report of another
// project as missing.
func (s *Service) resolveReport(ctx context.Context, ref ReportRef) (*types.ValidationReport, error) {
	if ref.ReportID == "" {
		return s.store.GetLatestReport(ctx, ref.ProjectID)
	}
	r, err := s.store.GetReport(ctx, ref.ReportID)
	if err != nil {
		return nil, err
	}
	if r.ProjectID != ref.ProjectID {
		return nil, store.ErrNotFound
	}
	return r, nil
}

// ReportForUser loads a report by ID when userID owns its project.
func (s *Service) ReportForUser(ctx context.Context, reportID, userID string) (*types.ValidationReport, error) {
	r, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetOwnedProject(ctx, r.ProjectID, userID); err != nil {
		return nil, err
	}
	return r, nil
}

// ListReports returns a project's reports; with latestOnly only the newest one.
func (s *Service) ListReports(ctx context.Context, projectID string, latestOnly bool) ([]types.ValidationReport, error) {
	if !latestOnly {
		return s.store.ListReports(ctx, projectID)
	}
	r, err := s.store.GetLatestReport(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return []types.ValidationReport{*r}, nil
}

func sectionVars(r *types.ValidationReport, section types.Section) map[string]string {
	vars := reportVars(r)
	vars["section"] = string(section)
	vars["section_summary"] = r.SectionResults[section].Summary
	return vars
}

// RunSectionAnalysis generates the baseline analysis of one section.
// Existing deep dives, reactions and completed actions are kept.
func (s *Service) RunSectionAnalysis(ctx context.Context, ref ReportRef, section types.Section) (*types.SectionResult, error) {
	r, err := s.resolveReport(ctx, ref)
	if err != nil {
		return nil, err
	}
	raw, err := s.generate(ctx, types.TaskStageValidate, prompt.TaskSectionAnalysis, sectionVars(r, section), false)
	if err != nil {
		return nil, err
	}

	result := parse.SectionAnalysis(raw)
	if prev, ok := r.SectionResults[section]; ok {
		result.DeepDive = prev.DeepDive
		result.PersonaReactions = prev.PersonaReactions
		result.CompletedActions = prev.CompletedActions
	}
	if err := s.store.UpdateSectionResult(ctx, r.ID, section, result); err != nil {
		return nil, fmt.Errorf("store section %s: %w", section, err)
	}
	s.logger.Info("section analysed", "report_id", r.ID, "section", section)
	return &result, nil
}

// baseline loads the report and requires an existing result for section.
func (s *Service) baseline(ctx context.Context, ref ReportRef, section types.Section) (*types.ValidationReport, error) {
	r, err := s.resolveReport(ctx, ref)
	if err != nil {
		return nil, err
	}
	if _, ok := r.SectionResults[section]; !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrSectionNotFound, section)
	}
	return r, nil
}

// DeepDive expands an analysed section.
func (s *Service) DeepDive(ctx context.Context, ref ReportRef, section types.Section) (*types.DeepDive, error) {
	r, err := s.baseline(ctx, ref, section)
	if err != nil {
		return nil, err
	}
	raw, err := s.generate(ctx, types.TaskStageValidate, prompt.TaskDeepDive, sectionVars(r, section), false)
	if err != nil {
		return nil, err
	}

	dd := parse.DeepDive(raw)
	if err := s.store.UpdateDeepDive(ctx, r.ID, section, dd); err != nil {
		return nil, fmt.Errorf("store deep dive %s: %w", section, err)
	}
	return &dd, nil
}

// PersonaReactions asks each report persona to react to an analysed section.
func (s *Service) PersonaReactions(ctx context.Context, ref ReportRef, section types.Section) ([]types.PersonaReaction, error) {
	r, err := s.baseline(ctx, ref, section)
	if err != nil {
		return nil, err
	}
	raw, err := s.generate(ctx, types.TaskStageValidate, prompt.TaskSectionReactions, sectionVars(r, section), false)
	if err != nil {
		return nil, err
	}

	reactions := parse.PersonaReactions(raw)
	if err := s.store.UpdatePersonaReactions(ctx, r.ID, section, reactions); err != nil {
		return nil, fmt.Errorf("store reactions %s: %w", section, err)
	}
	return reactions, nil
}

// RegeneratePersonas replaces the report's personas.
func (s *Service) RegeneratePersonas(ctx context.Context, ref ReportRef) ([]types.Persona, error) {
	r, err := s.resolveReport(ctx, ref)
	if err != nil {
		return nil, err
	}
	raw, err := s.generate(ctx, types.TaskStageValidate, prompt.TaskPersonas, reportVars(r), false)
	if err != nil {
		return nil, err
	}

	personas := parse.Personas(raw)
	if err := s.store.UpdateReportPersonas(ctx, r.ID, personas); err != nil {
		return nil, fmt.Errorf("store personas: %w", err)
	}
	return personas, nil
}

// RegenerateFeatureMap replaces the report's feature map.
func (s *Service) RegenerateFeatureMap(ctx context.Context, ref ReportRef) (*types.FeatureMap, error) {
	r, err := s.resolveReport(ctx, ref)
	if err != nil {
		return nil, err
	}
	raw, err := s.generate(ctx, types.TaskStageValidate, prompt.TaskFeatureMap, reportVars(r), false)
	if err != nil {
		return nil, err
	}

	fm := parse.FeatureMap(raw)
	if err := s.store.UpdateFeatureMap(ctx, r.ID, fm); err != nil {
		return nil, fmt.Errorf("store feature map: %w", err)
	}
	return &fm, nil
}

// Improve rewrites the idea to address the report's weakest pillars.
func (s *Service) Improve(ctx context.Context, ref ReportRef) (*types.IdeaEnhancement, error) {
	r, err := s.resolveReport(ctx, ref)
	if err != nil {
		return nil, err
	}
	raw, err := s.generate(ctx, types.TaskStageValidate, prompt.TaskImprove, reportVars(r), false)
	if err != nil {
		return nil, err
	}

	e := parse.IdeaEnhancement(raw)
	if err := s.store.UpdateIdeaEnhancement(ctx, r.ID, e); err != nil {
		return nil, fmt.Errorf("store idea enhancement: %w", err)
	}
	return &e, nil
}

// ToggleAction marks a section action complete or incomplete on a report the user owns.
func (s *Service) ToggleAction(ctx context.Context, userID string, req types.ToggleActionRequest) (*types.SectionResult, error) {
	if _, err := s.ReportForUser(ctx, req.ReportID, userID); err != nil {
		return nil, err
	}
	completed := req.Completed != nil && *req.Completed
	return s.store.ToggleActionCompletion(ctx, req.ReportID, types.Section(req.Section), req.ActionText, completed)
}
