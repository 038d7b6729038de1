package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/hyperengineering/ideaforge/internal/types"
)

const reportColumns = `id, project_id, user_id, status, idea_title, idea_summary, pillars,
	section_results, personas, feature_map, risk_radar, opportunity_score, idea_enhancement,
	created_at, updated_at`

func scanReport(row scanner) (*types.ValidationReport, error) {
	var r types.ValidationReport
	var pillars, sections, personas, featureMap, riskRadar, score, enhancement string
	var createdAt, updatedAt string

	err := row.Scan(
		&r.ID, &r.ProjectID, &r.UserID, &r.Status, &r.Idea.Title, &r.Idea.Summary,
		&pillars, &sections, &personas, &featureMap, &riskRadar, &score, &enhancement,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	columns := []struct {
		name string
		raw  string
		dest any
	}{
		{"pillars", pillars, &r.Pillars},
		{"section_results", sections, &r.SectionResults},
		{"personas", personas, &r.Personas},
		{"feature_map", featureMap, &r.FeatureMap},
		{"risk_radar", riskRadar, &r.RiskRadar},
		{"opportunity_score", score, &r.OpportunityScore},
		{"idea_enhancement", enhancement, &r.IdeaEnhancement},
	}
	for _, c := range columns {
		if err := unmarshalColumn(c.name, c.raw, c.dest); err != nil {
			return nil, err
		}
	}
	if r.SectionResults == nil {
		r.SectionResults = map[types.Section]types.SectionResult{}
	}
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return &r, nil
}

// CreateReport inserts a complete report. ID and timestamps are assigned when empty.
func (s *SQLiteStore) CreateReport(ctx context.Context, r *types.ValidationReport) error {
	if r.ID == "" {
		r.ID = newID()
	}
	if r.Status == "" {
		r.Status = types.ReportStatusReady
	}
	if r.SectionResults == nil {
		r.SectionResults = map[types.Section]types.SectionResult{}
	}
	now := s.now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	values := []any{r.Pillars, r.SectionResults, r.Personas, r.FeatureMap, r.RiskRadar, r.OpportunityScore, r.IdeaEnhancement}
	encoded := make([]any, len(values))
	for i, v := range values {
		enc, err := marshalJSON(v)
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		encoded[i] = enc
	}

	args := append([]any{r.ID, r.ProjectID, r.UserID, r.Status, r.Idea.Title, r.Idea.Summary}, encoded...)
	args = append(args, formatTime(r.CreatedAt), formatTime(r.UpdatedAt))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO validation_reports (`+reportColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, args...)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// GetReport retrieves a report by ID.
func (s *SQLiteStore) GetReport(ctx context.Context, id string) (*types.ValidationReport, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM validation_reports WHERE id = ?`, id)
	r, err := scanReport(row)
	if err != nil {
		return nil, fmt.Errorf("get report: %w", notFound(err))
	}
	return r, nil
}

// GetLatestReport returns the project's most recently created report.
func (s *SQLiteStore) GetLatestReport(ctx context.Context, projectID string) (*types.ValidationReport, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+reportColumns+` FROM validation_reports
		WHERE project_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, projectID)
	r, err := scanReport(row)
	if err != nil {
		return nil, fmt.Errorf("get latest report: %w", notFound(err))
	}
	return r, nil
}

// ListReports returns every report of a project, newest first.
func (s *SQLiteStore) ListReports(ctx context.Context, projectID string) ([]types.ValidationReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reportColumns+` FROM validation_reports
		WHERE project_id = ?
		ORDER BY created_at DESC, id DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	reports := []types.ValidationReport{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return reports, nil
}

// UpdateSectionResult stores a fresh analysis for one section. When the
// section already exists only its summary and insights change, so deep
// dives, reactions and completed actions survive regeneration.
func (s *SQLiteStore) UpdateSectionResult(ctx context.Context, reportID string, section types.Section, result types.SectionResult) error {
	base, err := sectionPath(section)
	if err != nil {
		return err
	}
	full, err := marshalJSON(result)
	if err != nil {
		return fmt.Errorf("marshal section: %w", err)
	}
	insights, err := marshalJSON(result.Insights)
	if err != nil {
		return fmt.Errorf("marshal insights: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE validation_reports SET
			section_results = CASE
				WHEN json_type(section_results, ?1) = 'object'
				THEN json_set(section_results, ?2, ?3, ?4, json(?5))
				ELSE json_set(section_results, ?1, json(?6))
			END,
			updated_at = ?7
		WHERE id = ?8
	`, base, base+".summary", result.Summary, base+".insights", insights, full, s.timestamp(), reportID)
	if err != nil {
		return fmt.Errorf("update section %s: %w", section, err)
	}
	ok, err := checkAffected(res)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// setSectionField merges value at the given field of an existing section.
func (s *SQLiteStore) setSectionField(ctx context.Context, reportID string, section types.Section, field string, value any) error {
	base, err := sectionPath(section)
	if err != nil {
		return err
	}
	encoded, err := marshalJSON(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", field, err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE validation_reports SET
			section_results = json_set(section_results, ?, json(?)),
			updated_at = ?
		WHERE id = ? AND json_type(section_results, ?) = 'object'
	`, base+"."+field, encoded, s.timestamp(), reportID, base)
	if err != nil {
		return fmt.Errorf("update section %s %s: %w", section, field, err)
	}
	ok, err := checkAffected(res)
	if err != nil {
		return err
	}
	if !ok {
		return s.missingSectionError(ctx, reportID)
	}
	return nil
}

// missingSectionError distinguishes an absent report from an absent section.
func (s *SQLiteStore) missingSectionError(ctx context.Context, reportID string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM validation_reports WHERE id = ?`, reportID).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check report: %w", err)
	}
	return ErrSectionNotFound
}

// UpdateDeepDive stores a deep dive on an existing section.
func (s *SQLiteStore) UpdateDeepDive(ctx context.Context, reportID string, section types.Section, dd types.DeepDive) error {
	return s.setSectionField(ctx, reportID, section, "deepDive", dd)
}

// UpdatePersonaReactions stores persona reactions on an existing section.
func (s *SQLiteStore) UpdatePersonaReactions(ctx context.Context, reportID string, section types.Section, reactions []types.PersonaReaction) error {
	if reactions == nil {
		reactions = []types.PersonaReaction{}
	}
	return s.setSectionField(ctx, reportID, section, "personaReactions", reactions)
}

// setColumn replaces one whole JSON column of a report.
func (s *SQLiteStore) setColumn(ctx context.Context, reportID, column string, value any) error {
	encoded, err := marshalJSON(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", column, err)
	}
	// column is always one of the constants passed by the callers below.
	res, err := s.db.ExecContext(ctx,
		`UPDATE validation_reports SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		encoded, s.timestamp(), reportID)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	ok, err := checkAffected(res)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// UpdateReportPersonas replaces the report's personas.
func (s *SQLiteStore) UpdateReportPersonas(ctx context.Context, reportID string, personas []types.Persona) error {
	if personas == nil {
		personas = []types.Persona{}
	}
	return s.setColumn(ctx, reportID, "personas", personas)
}

// UpdateFeatureMap replaces the report's feature map.
func (s *SQLiteStore) UpdateFeatureMap(ctx context.Context, reportID string, fm types.FeatureMap) error {
	return s.setColumn(ctx, reportID, "feature_map", fm)
}

// UpdateIdeaEnhancement replaces the report's idea enhancement.
func (s *SQLiteStore) UpdateIdeaEnhancement(ctx context.Context, reportID string, e types.IdeaEnhancement) error {
	return s.setColumn(ctx, reportID, "idea_enhancement", e)
}

// ToggleActionCompletion adds or removes action from a section's completed
// actions and returns the updated section. Completing twice is a no-op;
// un-completing an action that is not recorded returns ErrNotFound.
//
// Concurrent toggles on the same report are not coordinated: the section is
// read and rewritten in one deferred transaction with no lock held between
// the two. When calls race, the one whose read went stale fails with a busy
// error rather than overwriting the other's update, and the caller must
// retry.
func (s *SQLiteStore) ToggleActionCompletion(ctx context.Context, reportID string, section types.Section, action string, completed bool) (*types.SectionResult, error) {
	base, err := sectionPath(section)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var raw sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT json_extract(section_results, ?) FROM validation_reports WHERE id = ?`,
		base, reportID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read section: %w", err)
	}
	if !raw.Valid {
		return nil, ErrSectionNotFound
	}

	var result types.SectionResult
	if err := json.Unmarshal([]byte(raw.String), &result); err != nil {
		return nil, fmt.Errorf("%w: section %s: %v", ErrCorruptDocument, section, err)
	}

	idx := slices.Index(result.CompletedActions, action)
	switch {
	case completed && idx < 0:
		result.CompletedActions = append(result.CompletedActions, action)
	case !completed && idx < 0:
		return nil, ErrNotFound
	case !completed:
		result.CompletedActions = slices.Delete(result.CompletedActions, idx, idx+1)
	}
	if result.CompletedActions == nil {
		result.CompletedActions = []string{}
	}

	encoded, err := marshalJSON(result.CompletedActions)
	if err != nil {
		return nil, fmt.Errorf("marshal actions: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE validation_reports SET
			section_results = json_set(section_results, ?, json(?)),
			updated_at = ?
		WHERE id = ?
	`, base+".completedActions", encoded, s.timestamp(), reportID)
	if err != nil {
		return nil, fmt.Errorf("update actions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &result, nil
}
