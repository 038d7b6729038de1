// Package workflow orchestrates model calls, parsing and persistence for each
// stage of the product journey.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hyperengineering/ideaforge/internal/llm"
	"github.com/hyperengineering/ideaforge/internal/metrics"
	"github.com/hyperengineering/ideaforge/internal/prompt"
	"github.com/hyperengineering/ideaforge/internal/store"
	"github.com/hyperengineering/ideaforge/internal/types"
)

// ErrStageDisabled is returned when an admin has switched off the requested sub-stage.
var ErrStageDisabled = errors.New("stage disabled")

// Service runs the journey operations.
type Service struct {
	store    store.Store
	llm      llm.Client
	defaults prompt.Defaults
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// Deps holds the Service collaborators. Metrics and Logger are optional.
type Deps struct {
	Store    store.Store
	LLM      llm.Client
	Defaults prompt.Defaults
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// New creates a Service.
func New(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	defaults := d.Defaults
	if defaults == nil {
		defaults = prompt.DefaultConfigs()
	}
	return &Service{
		store:    d.Store,
		llm:      d.LLM,
		defaults: defaults,
		metrics:  d.Metrics,
		logger:   logger.With("component", "workflow"),
		now:      time.Now,
	}
}

// ResolveConfig returns the effective AI configuration for stage. A missing
// stored override is not an error.
func (s *Service) ResolveConfig(ctx context.Context, stage types.TaskStage) (prompt.Config, error) {
	override, err := s.store.GetAIConfig(ctx, stage)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return prompt.Config{}, fmt.Errorf("load ai config %s: %w", stage, err)
	}
	return prompt.Resolve(stage, override, s.defaults), nil
}

// generate renders task under stage's configuration and returns the raw completion.
func (s *Service) generate(ctx context.Context, stage types.TaskStage, task prompt.Task, vars map[string]string, vibeCoder bool) (string, error) {
	cfg, err := s.ResolveConfig(ctx, stage)
	if err != nil {
		return "", err
	}
	system, user := prompt.Render(cfg, task, vars, vibeCoder)
	return s.llm.Complete(ctx, llm.Request{
		Task:   string(task),
		Model:  cfg.Model,
		System: system,
		User:   user,
	})
}

// enabled reports whether the (stage, subStage) toggle is on. Absent settings are on.
func (s *Service) enabled(ctx context.Context, stage types.Stage, subStage string) (bool, error) {
	settings, err := s.store.ListStageSettings(ctx)
	if err != nil {
		return false, fmt.Errorf("list stage settings: %w", err)
	}
	for _, st := range settings {
		if st.Stage == stage && st.SubStage == subStage {
			return st.Enabled, nil
		}
	}
	return true, nil
}

func (s *Service) requireEnabled(ctx context.Context, stage types.Stage, subStage string) error {
	ok, err := s.enabled(ctx, stage, subStage)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrStageDisabled, stage, subStage)
	}
	return nil
}
