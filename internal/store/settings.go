package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hyperengineering/ideaforge/internal/types"
)

func nullable(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func fromNullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// GetAIConfig returns the stored override for stage.
func (s *SQLiteStore) GetAIConfig(ctx context.Context, stage types.TaskStage) (*types.AIConfig, error) {
	var cfg types.AIConfig
	var model, system, user, systemVibe, userVibe sql.NullString
	var updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT stage, model, system_prompt, user_prompt, system_prompt_vibe_coder, user_prompt_vibe_coder, updated_at
		FROM ai_configs WHERE stage = ?
	`, stage).Scan(&cfg.Stage, &model, &system, &user, &systemVibe, &userVibe, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("get ai config: %w", notFound(err))
	}

	cfg.Model = fromNullable(model)
	cfg.SystemPrompt = fromNullable(system)
	cfg.UserPrompt = fromNullable(user)
	cfg.SystemPromptVibeCoder = fromNullable(systemVibe)
	cfg.UserPromptVibeCoder = fromNullable(userVibe)
	cfg.UpdatedAt = parseTime(updatedAt)
	return &cfg, nil
}

// UpsertAIConfig replaces the stored override for cfg.Stage.
func (s *SQLiteStore) UpsertAIConfig(ctx context.Context, cfg types.AIConfig) (*types.AIConfig, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ai_configs (stage, model, system_prompt, user_prompt, system_prompt_vibe_coder, user_prompt_vibe_coder, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (stage) DO UPDATE SET
			model = excluded.model,
			system_prompt = excluded.system_prompt,
			user_prompt = excluded.user_prompt,
			system_prompt_vibe_coder = excluded.system_prompt_vibe_coder,
			user_prompt_vibe_coder = excluded.user_prompt_vibe_coder,
			updated_at = excluded.updated_at
	`, cfg.Stage, nullable(cfg.Model), nullable(cfg.SystemPrompt), nullable(cfg.UserPrompt),
		nullable(cfg.SystemPromptVibeCoder), nullable(cfg.UserPromptVibeCoder), s.timestamp())
	if err != nil {
		return nil, fmt.Errorf("upsert ai config: %w", err)
	}
	return s.GetAIConfig(ctx, cfg.Stage)
}

// ListStageSettings returns every stage setting ordered by stage and sub-stage.
func (s *SQLiteStore) ListStageSettings(ctx context.Context) ([]types.StageSetting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stage, sub_stage, enabled, updated_at FROM stage_settings
		ORDER BY stage, sub_stage
	`)
	if err != nil {
		return nil, fmt.Errorf("query stage settings: %w", err)
	}
	defer rows.Close()

	settings := []types.StageSetting{}
	for rows.Next() {
		var st types.StageSetting
		var updatedAt string
		if err := rows.Scan(&st.Stage, &st.SubStage, &st.Enabled, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan stage setting: %w", err)
		}
		st.UpdatedAt = parseTime(updatedAt)
		settings = append(settings, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return settings, nil
}

// UpsertStageSetting creates or updates the (stage, sub-stage) toggle.
func (s *SQLiteStore) UpsertStageSetting(ctx context.Context, st types.StageSetting) (*types.StageSetting, error) {
	now := s.now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stage_settings (stage, sub_stage, enabled, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (stage, sub_stage) DO UPDATE SET
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`, st.Stage, st.SubStage, st.Enabled, formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("upsert stage setting: %w", err)
	}
	st.UpdatedAt = now
	return &st, nil
}
