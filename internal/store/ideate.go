package store

import (
	"context"
	"fmt"

	"github.com/hyperengineering/ideaforge/internal/types"
)

const ideateColumns = `id, project_id, user_id, headline, narrative, quick_takes, pillars,
	suggestions, experiments, created_at, updated_at`

func scanIdeateRun(row scanner) (*types.IdeateRun, error) {
	var run types.IdeateRun
	var quickTakes, pillars, suggestions, experiments, createdAt, updatedAt string

	err := row.Scan(&run.ID, &run.ProjectID, &run.UserID, &run.Headline, &run.Narrative,
		&quickTakes, &pillars, &suggestions, &experiments, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if err := unmarshalColumn("quick_takes", quickTakes, &run.QuickTakes); err != nil {
		return nil, err
	}
	if err := unmarshalColumn("pillars", pillars, &run.Pillars); err != nil {
		return nil, err
	}
	if err := unmarshalColumn("suggestions", suggestions, &run.Suggestions); err != nil {
		return nil, err
	}
	if err := unmarshalColumn("experiments", experiments, &run.Experiments); err != nil {
		return nil, err
	}
	run.CreatedAt = parseTime(createdAt)
	run.UpdatedAt = parseTime(updatedAt)
	return &run, nil
}

// CreateIdeateRun inserts a new ideation snapshot. ID and timestamps are assigned when empty.
func (s *SQLiteStore) CreateIdeateRun(ctx context.Context, run *types.IdeateRun) error {
	if run.ID == "" {
		run.ID = newID()
	}
	now := s.now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now

	quickTakes, err := marshalJSON(run.QuickTakes)
	if err != nil {
		return fmt.Errorf("marshal quick takes: %w", err)
	}
	pillars, err := marshalJSON(run.Pillars)
	if err != nil {
		return fmt.Errorf("marshal pillars: %w", err)
	}
	suggestions, err := marshalJSON(run.Suggestions)
	if err != nil {
		return fmt.Errorf("marshal suggestions: %w", err)
	}
	experiments, err := marshalJSON(run.Experiments)
	if err != nil {
		return fmt.Errorf("marshal experiments: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ideate_runs (`+ideateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.ProjectID, run.UserID, run.Headline, run.Narrative,
		quickTakes, pillars, suggestions, experiments,
		formatTime(run.CreatedAt), formatTime(run.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert ideate run: %w", err)
	}
	return nil
}

// GetLatestIdeateRun returns the project's most recent ideation snapshot.
func (s *SQLiteStore) GetLatestIdeateRun(ctx context.Context, projectID string) (*types.IdeateRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+ideateColumns+` FROM ideate_runs
		WHERE project_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, projectID)
	run, err := scanIdeateRun(row)
	if err != nil {
		return nil, fmt.Errorf("get latest ideate run: %w", notFound(err))
	}
	return run, nil
}

// setRunElement replaces element index of a JSON array column in place.
func (s *SQLiteStore) setRunElement(ctx context.Context, runID, column string, index int, value any) error {
	if index < 0 {
		return ErrIndexOutOfRange
	}
	encoded, err := marshalJSON(value)
	if err != nil {
		return fmt.Errorf("marshal %s element: %w", column, err)
	}
	path := fmt.Sprintf("$[%d]", index)

	// column is always one of the constants passed by the callers below.
	res, err := s.db.ExecContext(ctx, `
		UPDATE ideate_runs SET
			`+column+` = json_set(`+column+`, ?, json(?)),
			updated_at = ?
		WHERE id = ? AND json_type(`+column+`, ?) IS NOT NULL
	`, path, encoded, s.timestamp(), runID, path)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	ok, err := checkAffected(res)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	if _, err := s.getIdeateRun(ctx, runID); err != nil {
		return err
	}
	return ErrIndexOutOfRange
}

func (s *SQLiteStore) getIdeateRun(ctx context.Context, id string) (*types.IdeateRun, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ideateColumns+` FROM ideate_runs WHERE id = ?`, id)
	run, err := scanIdeateRun(row)
	if err != nil {
		return nil, fmt.Errorf("get ideate run: %w", notFound(err))
	}
	return run, nil
}

// UpdateIdeatePillar replaces the pillar at index.
func (s *SQLiteStore) UpdateIdeatePillar(ctx context.Context, runID string, index int, pillar types.Pillar) error {
	return s.setRunElement(ctx, runID, "pillars", index, pillar)
}

// UpdateSuggestion replaces the suggestion at index.
func (s *SQLiteStore) UpdateSuggestion(ctx context.Context, runID string, index int, sg types.Suggestion) error {
	return s.setRunElement(ctx, runID, "suggestions", index, sg)
}

// UpdateExperiment replaces the experiment at index.
func (s *SQLiteStore) UpdateExperiment(ctx context.Context, runID string, index int, e types.Experiment) error {
	return s.setRunElement(ctx, runID, "experiments", index, e)
}
