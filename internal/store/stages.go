package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hyperengineering/ideaforge/internal/types"
	"github.com/hyperengineering/ideaforge/internal/validation"
)

const stageColumns = `project_id, stage, user_id, input, output, status, created_at, updated_at`

func scanStage(row scanner) (*types.ProjectStage, error) {
	var st types.ProjectStage
	var input, output, createdAt, updatedAt string
	if err := row.Scan(&st.ProjectID, &st.Stage, &st.UserID, &input, &output, &st.Status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if st.Input, err = decodeStageDocument(st.Stage, "input", input); err != nil {
		return nil, err
	}
	if st.Output, err = decodeStageDocument(st.Stage, "output", output); err != nil {
		return nil, err
	}
	st.CreatedAt = parseTime(createdAt)
	st.UpdatedAt = parseTime(updatedAt)
	return &st, nil
}

// decodeStageDocument parses and re-validates a stored stage document.
// Empty columns decode to nil.
func decodeStageDocument(stage types.Stage, column, raw string) (*types.StageDocument, error) {
	if raw == "" {
		return nil, nil
	}
	var doc types.StageDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrCorruptDocument, stage, column, err)
	}
	if verr := validation.ValidateStageDocument(stage, &doc); verr != nil {
		return nil, fmt.Errorf("%w: %s %s: %s", ErrCorruptDocument, stage, column, verr.Error())
	}
	return &doc, nil
}

// encodeStageDocument validates doc and serialises it. A nil doc encodes as
// NULL so the upsert keeps the stored value.
func encodeStageDocument(stage types.Stage, column string, doc *types.StageDocument) (sql.NullString, error) {
	if doc == nil {
		return sql.NullString{}, nil
	}
	if verr := validation.ValidateStageDocument(stage, doc); verr != nil {
		return sql.NullString{}, fmt.Errorf("%w: %s.%s", ErrInvalidDocument, column, verr.Error())
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal %s: %w", column, err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// ListStages returns every stored stage row of a project in journey order.
func (s *SQLiteStore) ListStages(ctx context.Context, projectID string) ([]types.ProjectStage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+stageColumns+` FROM project_stages
		WHERE project_id = ?
		ORDER BY CASE stage
			WHEN 'ideate' THEN 0 WHEN 'validate' THEN 1 WHEN 'design' THEN 2
			WHEN 'build' THEN 3 WHEN 'launch' THEN 4 WHEN 'monetise' THEN 5 ELSE 6 END
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query stages: %w", err)
	}
	defer rows.Close()

	stages := []types.ProjectStage{}
	for rows.Next() {
		st, err := scanStage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		stages = append(stages, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return stages, nil
}

// UpsertStage creates or updates the (project, stage) row. Nil documents and
// an empty status keep whatever is stored.
func (s *SQLiteStore) UpsertStage(ctx context.Context, st types.ProjectStage) (*types.ProjectStage, error) {
	input, err := encodeStageDocument(st.Stage, "input", st.Input)
	if err != nil {
		return nil, err
	}
	output, err := encodeStageDocument(st.Stage, "output", st.Output)
	if err != nil {
		return nil, err
	}
	status := sql.NullString{String: string(st.Status), Valid: st.Status != ""}
	now := s.timestamp()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO project_stages (project_id, stage, user_id, input, output, status, created_at, updated_at)
		VALUES (?, ?, ?, COALESCE(?, ''), COALESCE(?, ''), COALESCE(?, 'pending'), ?, ?)
		ON CONFLICT (project_id, stage) DO UPDATE SET
			input = COALESCE(?, input),
			output = COALESCE(?, output),
			status = COALESCE(?, status),
			updated_at = excluded.updated_at
	`, st.ProjectID, st.Stage, st.UserID, input, output, status, now, now, input, output, status)
	if err != nil {
		return nil, fmt.Errorf("upsert stage: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+stageColumns+` FROM project_stages WHERE project_id = ? AND stage = ?`, st.ProjectID, st.Stage)
	saved, err := scanStage(row)
	if err != nil {
		return nil, fmt.Errorf("scan stage: %w", notFound(err))
	}
	return saved, nil
}
