package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hyperengineering/ideaforge/internal/types"
)

const projectColumns = `id, user_id, title, description, progress, created_at, updated_at`

func scanProject(row scanner) (*types.Project, error) {
	var p types.Project
	var createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.Progress, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

// CreateProject inserts a new project with zero progress.
func (s *SQLiteStore) CreateProject(ctx context.Context, np types.NewProject) (*types.Project, error) {
	id := newID()
	now := s.timestamp()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, user_id, title, description, progress, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
	`, id, np.UserID, np.Title, np.Description, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}

	return s.GetProject(ctx, id)
}

// GetProject retrieves a project by ID regardless of owner.
func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*types.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return p, nil
}

// GetOwnedProject retrieves a project only when userID owns it.
func (s *SQLiteStore) GetOwnedProject(ctx context.Context, id, userID string) (*types.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ? AND user_id = ?`, id, userID)
	p, err := scanProject(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return p, nil
}

// ListProjects returns the user's projects, newest first.
func (s *SQLiteStore) ListProjects(ctx context.Context, userID string) ([]types.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := []types.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return projects, nil
}

// UpdateProject applies the non-nil fields of upd.
func (s *SQLiteStore) UpdateProject(ctx context.Context, id string, upd types.ProjectUpdate) (*types.Project, error) {
	var title, description sql.NullString
	var progress sql.NullFloat64
	if upd.Title != nil {
		title = sql.NullString{String: *upd.Title, Valid: true}
	}
	if upd.Description != nil {
		description = sql.NullString{String: *upd.Description, Valid: true}
	}
	if upd.Progress != nil {
		progress = sql.NullFloat64{Float64: *upd.Progress, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE projects SET
			title = COALESCE(?, title),
			description = COALESCE(?, description),
			progress = COALESCE(?, progress),
			updated_at = ?
		WHERE id = ?
	`, title, description, progress, s.timestamp(), id)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	ok, err := checkAffected(res)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	return s.GetProject(ctx, id)
}
