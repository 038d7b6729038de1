package workflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/hyperengineering/ideaforge/internal/parse"
	"github.com/hyperengineering/ideaforge/internal/prompt"
	"github.com/hyperengineering/ideaforge/internal/types"
)

// Run steps, in execution order.
const (
	StepPillars          = "pillars"
	StepPersonas         = "personas"
	StepFeatureMap       = "feature_map"
	StepRiskRadar        = "risk_radar"
	StepOpportunityScore = "opportunity_score"
	StepPersist          = "persist"
)

// StartValidationRunError reports which step of a validation run failed and
// the HTTP status the caller should see.
type StartValidationRunError struct {
	Step   string
	Status int
	Err    error
}

func (e *StartValidationRunError) Error() string {
	return fmt.Sprintf("validation run failed at %s: %v", e.Step, e.Err)
}

func (e *StartValidationRunError) Unwrap() error {
	return e.Err
}

func runError(step string, err error) *StartValidationRunError {
	status := http.StatusInternalServerError
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}
	return &StartValidationRunError{Step: step, Status: status, Err: err}
}

// StartRunInput identifies the project and idea to validate.
type StartRunInput struct {
	ProjectID string
	UserID    string
	Idea      types.Idea
}

// StartValidationRun generates a complete validation report. Steps run in
// sequence and each step's parsed output feeds later prompts. The report is
// stored only when every step succeeded; on failure nothing is persisted.
func (s *Service) StartValidationRun(ctx context.Context, in StartRunInput) (*types.ValidationReport, error) {
	report := &types.ValidationReport{
		ProjectID:      in.ProjectID,
		UserID:         in.UserID,
		Status:         types.ReportStatusReady,
		Idea:           in.Idea,
		SectionResults: map[types.Section]types.SectionResult{},
	}
	log := s.logger.With("action", "validation_run", "project_id", in.ProjectID)

	steps := []struct {
		name  string
		task  prompt.Task
		apply func(raw string)
	}{
		{StepPillars, prompt.TaskPillars, func(raw string) { report.Pillars = parse.Pillars(raw) }},
		{StepPersonas, prompt.TaskPersonas, func(raw string) { report.Personas = parse.Personas(raw) }},
		{StepFeatureMap, prompt.TaskFeatureMap, func(raw string) { report.FeatureMap = parse.FeatureMap(raw) }},
		{StepRiskRadar, prompt.TaskRiskRadar, func(raw string) { report.RiskRadar = parse.RiskRadar(raw) }},
		{StepOpportunityScore, prompt.TaskOpportunityScore, func(raw string) { report.OpportunityScore = parse.OpportunityScore(raw) }},
	}

	for _, step := range steps {
		raw, err := s.generate(ctx, types.TaskStageValidate, step.task, reportVars(report), false)
		s.metrics.ObserveRun(step.name, err)
		if err != nil {
			log.Error("validation step failed", "step", step.name, "error", err)
			return nil, runError(step.name, err)
		}
		step.apply(raw)
	}

	report.IdeaEnhancement = types.IdeaEnhancement{Changes: []string{}}
	err := s.store.CreateReport(ctx, report)
	s.metrics.ObserveRun(StepPersist, err)
	if err != nil {
		log.Error("persist validation report failed", "error", err)
		return nil, runError(StepPersist, err)
	}

	log.Info("validation report ready", "report_id", report.ID, "opportunity_score", report.OpportunityScore.Score)
	return report, nil
}
