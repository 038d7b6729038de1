package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hyperengineering/ideaforge/internal/types"
)

// newTestStore opens a migrated store in a temp directory with a clock that
// advances one millisecond per call.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ideaforge.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ticks atomic.Int64
	s.now = func() time.Time {
		return base.Add(time.Duration(ticks.Add(1)) * time.Millisecond)
	}
	return s
}

func seedProject(t *testing.T, s *SQLiteStore, userID string) *types.Project {
	t.Helper()
	p, err := s.CreateProject(context.Background(), types.NewProject{UserID: userID, Title: "Dog walking marketplace"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	return p
}

func seedReport(t *testing.T, s *SQLiteStore, p *types.Project) *types.ValidationReport {
	t.Helper()
	r := &types.ValidationReport{
		ProjectID: p.ID,
		UserID:    p.UserID,
		Idea:      types.Idea{Title: "Dog walking", Summary: "On-demand walkers"},
		Pillars:   []types.Pillar{{ID: types.PillarAudienceFit, Score: 7}},
		SectionResults: map[types.Section]types.SectionResult{
			types.SectionMarket: {
				Summary:          "Large market",
				Insights:         []types.Insight{},
				PersonaReactions: []types.PersonaReaction{},
				CompletedActions: []string{},
			},
			types.SectionGoToMarket: {
				Summary:          "Start local",
				Insights:         []types.Insight{},
				PersonaReactions: []types.PersonaReaction{},
				CompletedActions: []string{},
			},
		},
		Personas:   []types.Persona{},
		FeatureMap: types.FeatureMap{Must: []string{"booking"}},
	}
	if err := s.CreateReport(context.Background(), r); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	return r
}

// --- Projects ---

func TestProjects_CreateGetList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Given: Two projects for one user and one for another
	first := seedProject(t, s, "user-a")
	second := seedProject(t, s, "user-a")
	seedProject(t, s, "user-b")

	// When: Listing user-a's projects
	projects, err := s.ListProjects(ctx, "user-a")
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}

	// Then: Only user-a's projects are returned, newest first
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}
	if projects[0].ID != second.ID || projects[1].ID != first.ID {
		t.Errorf("unexpected order: %s, %s", projects[0].ID, projects[1].ID)
	}
	if first.Progress != 0 || first.CreatedAt.IsZero() {
		t.Errorf("unexpected new project %+v", first)
	}
}

func TestProjects_GetOwnedProject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s, "owner")

	if _, err := s.GetOwnedProject(ctx, p.ID, "owner"); err != nil {
		t.Errorf("owner lookup failed: %v", err)
	}
	if _, err := s.GetOwnedProject(ctx, p.ID, "intruder"); !errors.Is(err, ErrNotFound) {
		t.Errorf("non-owner lookup error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetOwnedProject(ctx, "missing", "owner"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing lookup error = %v, want ErrNotFound", err)
	}
}

func TestProjects_UpdatePartial(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s, "owner")

	progress := 40.0
	updated, err := s.UpdateProject(ctx, p.ID, types.ProjectUpdate{Progress: &progress})
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if updated.Progress != 40 || updated.Title != p.Title {
		t.Errorf("unexpected update result %+v", updated)
	}
	if !updated.UpdatedAt.After(p.UpdatedAt) {
		t.Error("updated_at should advance")
	}

	if _, err := s.UpdateProject(ctx, "missing", types.ProjectUpdate{Progress: &progress}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing update error = %v, want ErrNotFound", err)
	}
}

// --- Stages ---

func stageDoc(stage types.Stage, data string) *types.StageDocument {
	return &types.StageDocument{Version: 1, Stage: stage, Data: json.RawMessage(data)}
}

func TestStages_UpsertKeepsUnsetFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s, "owner")

	// Given: A stage with an input document
	_, err := s.UpsertStage(ctx, types.ProjectStage{
		ProjectID: p.ID, UserID: p.UserID, Stage: types.StageIdeate,
		Input: stageDoc(types.StageIdeate, `{"ideaTitle":"Walkies"}`),
	})
	if err != nil {
		t.Fatalf("first UpsertStage: %v", err)
	}

	// When: Only the status changes
	st, err := s.UpsertStage(ctx, types.ProjectStage{
		ProjectID: p.ID, UserID: p.UserID, Stage: types.StageIdeate, Status: types.StageStatusCompleted,
	})
	if err != nil {
		t.Fatalf("second UpsertStage: %v", err)
	}

	// Then: The input survives and status is updated
	if st.Status != types.StageStatusCompleted {
		t.Errorf("status = %q", st.Status)
	}
	if st.Input == nil || string(st.Input.Data) != `{"ideaTitle":"Walkies"}` {
		t.Errorf("input lost: %+v", st.Input)
	}
	if st.Output != nil {
		t.Errorf("output should be nil, got %+v", st.Output)
	}

	stages, err := s.ListStages(ctx, p.ID)
	if err != nil || len(stages) != 1 {
		t.Fatalf("ListStages = %v, %v", stages, err)
	}
}

func TestStages_RejectsInvalidDocument(t *testing.T) {
	s := newTestStore(t)
	p := seedProject(t, s, "owner")

	_, err := s.UpsertStage(context.Background(), types.ProjectStage{
		ProjectID: p.ID, UserID: p.UserID, Stage: types.StageIdeate,
		Output: stageDoc(types.StageIdeate, `{"ideaTitle": 42}`),
	})
	if !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("error = %v, want ErrInvalidDocument", err)
	}
}

func TestStages_CorruptDocumentOnRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s, "owner")

	_, err := s.db.Exec(`
		INSERT INTO project_stages (project_id, stage, user_id, input, created_at, updated_at)
		VALUES (?, 'design', ?, '{"version":1,"stage":"design","data":{"features":"x"}}', 'now', 'now')
	`, p.ID, p.UserID)
	if err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}

	if _, err := s.ListStages(ctx, p.ID); !errors.Is(err, ErrCorruptDocument) {
		t.Errorf("error = %v, want ErrCorruptDocument", err)
	}
}

// --- Reports ---

func TestReports_LatestByCreationTime(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s, "owner")

	seedReport(t, s, p)
	newest := seedReport(t, s, p)

	latest, err := s.GetLatestReport(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetLatestReport: %v", err)
	}
	if latest.ID != newest.ID {
		t.Errorf("latest = %s, want %s", latest.ID, newest.ID)
	}

	reports, err := s.ListReports(ctx, p.ID)
	if err != nil || len(reports) != 2 {
		t.Fatalf("ListReports = %d, %v", len(reports), err)
	}

	if _, err := s.GetLatestReport(ctx, "no-project"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestReports_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	p := seedProject(t, s, "owner")
	r := seedReport(t, s, p)

	got, err := s.GetReport(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if got.Status != types.ReportStatusReady {
		t.Errorf("status = %q", got.Status)
	}
	if diff := cmp.Diff(r.SectionResults, got.SectionResults); diff != "" {
		t.Errorf("section results mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(r.FeatureMap, got.FeatureMap); diff != "" {
		t.Errorf("feature map mismatch (-want +got):\n%s", diff)
	}
}

func TestReports_ConcurrentTogglesKeepAcknowledgedUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s, "owner")
	r := seedReport(t, s, p)

	// Given: Several callers completing different actions at once
	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.ToggleActionCompletion(ctx, r.ID, types.SectionGoToMarket, fmt.Sprintf("action-%d", i), true)
		}(i)
	}
	wg.Wait()

	// Then: Every toggle that reported success is stored; racing losers return an error
	got, err := s.GetReport(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	stored := got.SectionResults[types.SectionGoToMarket].CompletedActions
	succeeded := 0
	for i, err := range errs {
		if err != nil {
			continue
		}
		succeeded++
		action := fmt.Sprintf("action-%d", i)
		if !slices.Contains(stored, action) {
			t.Errorf("acknowledged toggle %q lost; stored = %v", action, stored)
		}
	}
	if succeeded == 0 {
		t.Fatalf("no toggle succeeded: %v", errs)
	}
	if len(stored) != succeeded {
		t.Errorf("stored %d actions, %d toggles succeeded", len(stored), succeeded)
	}
}

func TestReports_ToggleActionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s, "owner")
	r := seedReport(t, s, p)
	const action = "Interview five dog owners"

	// When: Completing the same action twice
	for i := 0; i < 2; i++ {
		res, err := s.ToggleActionCompletion(ctx, r.ID, types.SectionGoToMarket, action, true)
		if err != nil {
			t.Fatalf("toggle on: %v", err)
		}
		if diff := cmp.Diff([]string{action}, res.CompletedActions); diff != "" {
			t.Errorf("completed actions mismatch (-want +got):\n%s", diff)
		}
	}

	// Then: Un-completing removes it
	res, err := s.ToggleActionCompletion(ctx, r.ID, types.SectionGoToMarket, action, false)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if len(res.CompletedActions) != 0 {
		t.Errorf("expected empty list, got %v", res.CompletedActions)
	}

	// And: Un-completing again reports the action as absent
	if _, err := s.ToggleActionCompletion(ctx, r.ID, types.SectionGoToMarket, action, false); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}

	// And: The stored report is unchanged apart from the toggled list
	got, err := s.GetReport(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if got.SectionResults[types.SectionGoToMarket].Summary != "Start local" {
		t.Errorf("summary clobbered: %+v", got.SectionResults[types.SectionGoToMarket])
	}
}

func TestReports_ToggleMissingSection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s, "owner")
	r := seedReport(t, s, p)

	if _, err := s.ToggleActionCompletion(ctx, r.ID, types.SectionPricing, "x", true); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("error = %v, want ErrSectionNotFound", err)
	}
	if _, err := s.ToggleActionCompletion(ctx, "missing", types.SectionPricing, "x", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if _, err := s.ToggleActionCompletion(ctx, r.ID, types.Section("bogus"), "x", true); !errors.Is(err, ErrInvalidSection) {
		t.Errorf("error = %v, want ErrInvalidSection", err)
	}
}

func TestReports_DeepDiveDoesNotClobberSiblings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s, "owner")
	r := seedReport(t, s, p)

	dd := types.DeepDive{Summary: "Go deeper", Details: []string{"d"}, Actions: []string{"a"}}
	if err := s.UpdateDeepDive(ctx, r.ID, types.SectionGoToMarket, dd); err != nil {
		t.Fatalf("UpdateDeepDive: %v", err)
	}
	reactions := []types.PersonaReaction{{Persona: "Maya", Sentiment: "positive", Reaction: "yes"}}
	if err := s.UpdatePersonaReactions(ctx, r.ID, types.SectionGoToMarket, reactions); err != nil {
		t.Fatalf("UpdatePersonaReactions: %v", err)
	}

	got, err := s.GetReport(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	gtm := got.SectionResults[types.SectionGoToMarket]
	if gtm.DeepDive == nil || gtm.DeepDive.Summary != "Go deeper" {
		t.Errorf("deep dive not stored: %+v", gtm)
	}
	if gtm.Summary != "Start local" || len(gtm.PersonaReactions) != 1 {
		t.Errorf("go-to-market section damaged: %+v", gtm)
	}
	if diff := cmp.Diff(r.SectionResults[types.SectionMarket], got.SectionResults[types.SectionMarket]); diff != "" {
		t.Errorf("sibling section changed (-want +got):\n%s", diff)
	}
}

func TestReports_DeepDiveRequiresSection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s, "owner")
	r := seedReport(t, s, p)

	err := s.UpdateDeepDive(ctx, r.ID, types.SectionPricing, types.DeepDive{})
	if !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("error = %v, want ErrSectionNotFound", err)
	}
	err = s.UpdateDeepDive(ctx, "missing", types.SectionPricing, types.DeepDive{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestReports_UpdateSectionResultPreservesExtras(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s, "owner")
	r := seedReport(t, s, p)

	if _, err := s.ToggleActionCompletion(ctx, r.ID, types.SectionMarket, "Size the market", true); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	// When: The market section is regenerated and a new pricing section is added
	fresh := types.SectionResult{
		Summary:          "Growing market",
		Insights:         []types.Insight{{Label: "TAM", Detail: "$2B"}},
		PersonaReactions: []types.PersonaReaction{},
		CompletedActions: []string{},
	}
	if err := s.UpdateSectionResult(ctx, r.ID, types.SectionMarket, fresh); err != nil {
		t.Fatalf("UpdateSectionResult market: %v", err)
	}
	if err := s.UpdateSectionResult(ctx, r.ID, types.SectionPricing, fresh); err != nil {
		t.Fatalf("UpdateSectionResult pricing: %v", err)
	}

	got, err := s.GetReport(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	market := got.SectionResults[types.SectionMarket]
	if market.Summary != "Growing market" || len(market.Insights) != 1 {
		t.Errorf("market not updated: %+v", market)
	}
	if diff := cmp.Diff([]string{"Size the market"}, market.CompletedActions); diff != "" {
		t.Errorf("completed actions lost (-want +got):\n%s", diff)
	}
	if got.SectionResults[types.SectionPricing].Summary != "Growing market" {
		t.Errorf("pricing not created: %+v", got.SectionResults)
	}
	if len(got.SectionResults) != 3 {
		t.Errorf("expected 3 sections, got %d", len(got.SectionResults))
	}
}

func TestReports_ColumnUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s, "owner")
	r := seedReport(t, s, p)

	personas := []types.Persona{{Name: "Maya", Role: "Owner", Goals: []string{}, PainPoints: []string{}}}
	if err := s.UpdateReportPersonas(ctx, r.ID, personas); err != nil {
		t.Fatalf("UpdateReportPersonas: %v", err)
	}
	fm := types.FeatureMap{Must: []string{"gps"}, Should: []string{}, Could: []string{}, Avoid: []string{}}
	if err := s.UpdateFeatureMap(ctx, r.ID, fm); err != nil {
		t.Fatalf("UpdateFeatureMap: %v", err)
	}
	enh := types.IdeaEnhancement{ImprovedTitle: "Walkies Pro", Changes: []string{"niche"}}
	if err := s.UpdateIdeaEnhancement(ctx, r.ID, enh); err != nil {
		t.Fatalf("UpdateIdeaEnhancement: %v", err)
	}

	got, err := s.GetReport(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if diff := cmp.Diff(personas, got.Personas); diff != "" {
		t.Errorf("personas mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(fm, got.FeatureMap); diff != "" {
		t.Errorf("feature map mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(enh, got.IdeaEnhancement); diff != "" {
		t.Errorf("enhancement mismatch (-want +got):\n%s", diff)
	}

	if err := s.UpdateFeatureMap(ctx, "missing", fm); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// --- Ideate runs ---

func TestIdeate_UpdateElementsInPlace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s, "owner")

	run := &types.IdeateRun{
		ProjectID: p.ID, UserID: p.UserID, Headline: "H",
		QuickTakes:  []types.QuickTake{},
		Pillars:     []types.Pillar{{ID: types.PillarAudienceFit, Score: 5}, {ID: types.PillarProblemClarity, Score: 6}},
		Suggestions: []types.Suggestion{{ID: "s1", Text: "niche down"}},
		Experiments: []types.Experiment{{ID: "e1", Title: "Landing page", Status: types.ExperimentDraft}},
	}
	if err := s.CreateIdeateRun(ctx, run); err != nil {
		t.Fatalf("CreateIdeateRun: %v", err)
	}

	if err := s.UpdateIdeatePillar(ctx, run.ID, 1, types.Pillar{ID: types.PillarProblemClarity, Score: 6.3}); err != nil {
		t.Fatalf("UpdateIdeatePillar: %v", err)
	}
	if err := s.UpdateSuggestion(ctx, run.ID, 0, types.Suggestion{ID: "s1", Text: "niche down", Applied: true}); err != nil {
		t.Fatalf("UpdateSuggestion: %v", err)
	}
	if err := s.UpdateExperiment(ctx, run.ID, 0, types.Experiment{ID: "e1", Title: "Landing page", Status: types.ExperimentScheduled}); err != nil {
		t.Fatalf("UpdateExperiment: %v", err)
	}

	got, err := s.GetLatestIdeateRun(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetLatestIdeateRun: %v", err)
	}
	if got.Pillars[0].Score != 5 || got.Pillars[1].Score != 6.3 {
		t.Errorf("pillars = %+v", got.Pillars)
	}
	if !got.Suggestions[0].Applied || got.Experiments[0].Status != types.ExperimentScheduled {
		t.Errorf("unexpected run %+v", got)
	}

	if err := s.UpdateIdeatePillar(ctx, run.ID, 7, types.Pillar{}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("error = %v, want ErrIndexOutOfRange", err)
	}
	if err := s.UpdateIdeatePillar(ctx, "missing", 0, types.Pillar{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// --- Blueprints ---

func TestBlueprints_SectionsMergeAndCompletion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s, "owner")

	if _, err := s.GetBlueprint(ctx, p.ID, types.BlueprintLaunch); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}

	// When: Two sections are generated and one is marked complete
	if _, err := s.SaveBlueprintSection(ctx, p.ID, p.UserID, types.BlueprintLaunch, "messaging_framework", json.RawMessage(`{"positioning":"P"}`)); err != nil {
		t.Fatalf("SaveBlueprintSection: %v", err)
	}
	if _, err := s.SaveBlueprintSection(ctx, p.ID, p.UserID, types.BlueprintLaunch, "launch_channels", json.RawMessage(`{"channels":[]}`)); err != nil {
		t.Fatalf("SaveBlueprintSection: %v", err)
	}
	bp, err := s.SetSectionCompletion(ctx, p.ID, p.UserID, types.BlueprintLaunch, "messaging_framework", true)
	if err != nil {
		t.Fatalf("SetSectionCompletion: %v", err)
	}

	// Then: Both sections exist and the completion map is set
	if len(bp.Sections) != 2 {
		t.Errorf("sections = %v", bp.Sections)
	}
	if !bp.SectionCompletion["messaging_framework"] {
		t.Errorf("completion = %v", bp.SectionCompletion)
	}
	if bp.LastAIRun == nil {
		t.Error("last AI run should be recorded")
	}

	if _, err := s.SaveBlueprintSection(ctx, p.ID, p.UserID, types.BlueprintLaunch, "pricing_plan", json.RawMessage(`{}`)); !errors.Is(err, ErrInvalidSection) {
		t.Errorf("error = %v, want ErrInvalidSection", err)
	}
}

func TestBlueprints_CompletionBeforeGeneration(t *testing.T) {
	s := newTestStore(t)
	p := seedProject(t, s, "owner")

	bp, err := s.SetSectionCompletion(context.Background(), p.ID, p.UserID, types.BlueprintMonetise, "offer_plan", false)
	if err != nil {
		t.Fatalf("SetSectionCompletion: %v", err)
	}
	if done, ok := bp.SectionCompletion["offer_plan"]; !ok || done {
		t.Errorf("completion = %v", bp.SectionCompletion)
	}
	if bp.LastAIRun != nil {
		t.Error("no AI run has happened yet")
	}
}

// --- Settings ---

func TestSettings_StageSettingUpsertIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	setting := types.StageSetting{Stage: types.StageLaunch, SubStage: "channels", Enabled: true}
	for i := 0; i < 3; i++ {
		if _, err := s.UpsertStageSetting(ctx, setting); err != nil {
			t.Fatalf("UpsertStageSetting: %v", err)
		}
	}
	setting.Enabled = false
	if _, err := s.UpsertStageSetting(ctx, setting); err != nil {
		t.Fatalf("UpsertStageSetting: %v", err)
	}

	settings, err := s.ListStageSettings(ctx)
	if err != nil {
		t.Fatalf("ListStageSettings: %v", err)
	}
	if len(settings) != 1 || settings[0].Enabled {
		t.Errorf("settings = %+v", settings)
	}
}

func TestSettings_AIConfigReplace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetAIConfig(ctx, types.TaskStageBuild); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}

	model := "gpt-4o"
	prompt := "Be brief."
	saved, err := s.UpsertAIConfig(ctx, types.AIConfig{Stage: types.TaskStageBuild, Model: &model, SystemPrompt: &prompt})
	if err != nil {
		t.Fatalf("UpsertAIConfig: %v", err)
	}
	if saved.Model == nil || *saved.Model != model || saved.UserPrompt != nil {
		t.Errorf("unexpected config %+v", saved)
	}

	// When: Replaced without a system prompt
	saved, err = s.UpsertAIConfig(ctx, types.AIConfig{Stage: types.TaskStageBuild, Model: &model})
	if err != nil {
		t.Fatalf("UpsertAIConfig: %v", err)
	}
	if saved.SystemPrompt != nil {
		t.Errorf("system prompt should be cleared, got %q", *saved.SystemPrompt)
	}
}

func TestSchemaVersion_AfterMigrations(t *testing.T) {
	s := newTestStore(t)

	v, err := s.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != 1 {
		t.Errorf("SchemaVersion = %d, want 1", v)
	}
}
