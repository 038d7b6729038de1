package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hyperengineering/ideaforge/internal/types"
)

const blueprintColumns = `id, project_id, user_id, kind, section_completion, sections, last_ai_run, created_at, updated_at`

func scanBlueprint(row scanner) (*types.Blueprint, error) {
	var bp types.Blueprint
	var completion, sections, createdAt, updatedAt string
	var lastRun sql.NullString

	err := row.Scan(&bp.ID, &bp.ProjectID, &bp.UserID, &bp.Kind, &completion, &sections, &lastRun, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if err := unmarshalColumn("section_completion", completion, &bp.SectionCompletion); err != nil {
		return nil, err
	}
	if err := unmarshalColumn("sections", sections, &bp.Sections); err != nil {
		return nil, err
	}
	if bp.SectionCompletion == nil {
		bp.SectionCompletion = map[string]bool{}
	}
	if bp.Sections == nil {
		bp.Sections = map[string]json.RawMessage{}
	}
	if lastRun.Valid {
		t := parseTime(lastRun.String)
		bp.LastAIRun = &t
	}
	bp.CreatedAt = parseTime(createdAt)
	bp.UpdatedAt = parseTime(updatedAt)
	return &bp, nil
}

// GetBlueprint returns the project's blueprint of the given kind.
func (s *SQLiteStore) GetBlueprint(ctx context.Context, projectID string, kind types.BlueprintKind) (*types.Blueprint, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+blueprintColumns+` FROM blueprints WHERE project_id = ? AND kind = ?`, projectID, kind)
	bp, err := scanBlueprint(row)
	if err != nil {
		return nil, fmt.Errorf("get blueprint: %w", notFound(err))
	}
	return bp, nil
}

func blueprintKey(kind types.BlueprintKind, section string) (string, error) {
	if !types.ValidBlueprintSection(kind, section) {
		return "", fmt.Errorf("%w: %q for %s", ErrInvalidSection, section, kind)
	}
	return `$."` + section + `"`, nil
}

// SaveBlueprintSection stores generated content for one section and records
// the generation time. The blueprint is created on first write.
func (s *SQLiteStore) SaveBlueprintSection(ctx context.Context, projectID, userID string, kind types.BlueprintKind, section string, content json.RawMessage) (*types.Blueprint, error) {
	path, err := blueprintKey(kind, section)
	if err != nil {
		return nil, err
	}
	if !json.Valid(content) {
		return nil, fmt.Errorf("%w: section %s content is not JSON", ErrInvalidDocument, section)
	}
	now := s.timestamp()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO blueprints (id, project_id, user_id, kind, section_completion, sections, last_ai_run, created_at, updated_at)
		VALUES (?, ?, ?, ?, '{}', json_object(?, json(?)), ?, ?, ?)
		ON CONFLICT (project_id, kind) DO UPDATE SET
			sections = json_set(sections, ?, json(?)),
			last_ai_run = excluded.last_ai_run,
			updated_at = excluded.updated_at
	`, newID(), projectID, userID, kind, section, string(content), now, now, now, path, string(content))
	if err != nil {
		return nil, fmt.Errorf("save blueprint section: %w", err)
	}
	return s.GetBlueprint(ctx, projectID, kind)
}

// SetSectionCompletion marks one section complete or incomplete.
func (s *SQLiteStore) SetSectionCompletion(ctx context.Context, projectID, userID string, kind types.BlueprintKind, section string, completed bool) (*types.Blueprint, error) {
	path, err := blueprintKey(kind, section)
	if err != nil {
		return nil, err
	}
	value := "false"
	if completed {
		value = "true"
	}
	now := s.timestamp()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO blueprints (id, project_id, user_id, kind, section_completion, sections, created_at, updated_at)
		VALUES (?, ?, ?, ?, json_object(?, json(?)), '{}', ?, ?)
		ON CONFLICT (project_id, kind) DO UPDATE SET
			section_completion = json_set(section_completion, ?, json(?)),
			updated_at = excluded.updated_at
	`, newID(), projectID, userID, kind, section, value, now, now, path, value)
	if err != nil {
		return nil, fmt.Errorf("set section completion: %w", err)
	}
	return s.GetBlueprint(ctx, projectID, kind)
}
