package parse

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hyperengineering/ideaforge/internal/types"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", `Sure! Here it is: {"a":"}"} hope that helps`, `{"a":"}"}`},
		{"array", `[1,2]`, `[1,2]`},
		{"truncated", `{"a":[1,2`, ``},
		{"no json", `just words`, ``},
		{"empty", ``, ``},
		{"skips invalid first candidate", `{oops} then {"ok":true}`, `{"ok":true}`},
		{"unclosed outer value", `{"a": {"ok":true}`, ``},
		{"mismatched closer", `{"a":1] then {"ok":true}`, `{"ok":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.raw); got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractJSON_HostileInputIsBounded(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unterminated nesting", strings.Repeat(`{"a":`, 160_000)},
		{"mismatched closers", strings.Repeat("[", 100_000) + "}"},
		{"nested invalid objects", strings.Repeat("{x", 40_000) + strings.Repeat("}", 40_000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given a large reply that never forms a valid JSON value
			start := time.Now()

			// When it is parsed as a pillar response
			pillars := Pillars(tt.raw)

			// Then parsing finishes quickly with the default pillars
			if elapsed := time.Since(start); elapsed > 2*time.Second {
				t.Errorf("Pillars took %v on %d bytes", elapsed, len(tt.raw))
			}
			if len(pillars) != len(types.PillarIDs) {
				t.Errorf("expected %d pillars, got %d", len(types.PillarIDs), len(pillars))
			}
		})
	}
}

func TestExtractJSON_IgnoresTextPastLimit(t *testing.T) {
	raw := strings.Repeat("x", maxExtractBytes) + `{"ok":true}`
	if got := ExtractJSON(raw); got != "" {
		t.Errorf("ExtractJSON found %q beyond the scan limit", got)
	}
}

func TestPillars_CanonicalOrderAndClamping(t *testing.T) {
	raw := `{"pillars":[
		{"id":"monetisation","score":12,"strength":"s","weakness":"w","improvement":"i"},
		{"id":"Audience Fit","score":"7.25"},
		{"id":"virality","score":9},
		{"id":"feasibility","score":-3,"risks":["a","b","c","d"]}
	]}`

	pillars := Pillars(raw)

	if len(pillars) != 7 {
		t.Fatalf("expected 7 pillars, got %d", len(pillars))
	}
	for i, id := range types.PillarIDs {
		if pillars[i].ID != id {
			t.Errorf("pillar %d = %q, want %q", i, pillars[i].ID, id)
		}
	}
	if pillars[0].Score != 7.3 {
		t.Errorf("audienceFit score = %v, want 7.3", pillars[0].Score)
	}
	if pillars[6].Score != 10 {
		t.Errorf("monetisation score = %v, want clamp to 10", pillars[6].Score)
	}
	if pillars[5].Score != 0 {
		t.Errorf("feasibility score = %v, want clamp to 0", pillars[5].Score)
	}
	if len(pillars[5].Risks) != types.MaxPillarNotes {
		t.Errorf("feasibility risks = %v, want capped at %d", pillars[5].Risks, types.MaxPillarNotes)
	}
	if pillars[1].Score != 0 || pillars[1].Opportunities == nil {
		t.Errorf("missing pillar should be zero-valued with empty lists: %+v", pillars[1])
	}
}

func TestPillars_ProseFallback(t *testing.T) {
	pillars := Pillars("I think this idea is great.")
	if len(pillars) != 7 {
		t.Fatalf("expected 7 pillars, got %d", len(pillars))
	}
	for _, p := range pillars {
		if p.Score != 0 || p.Risks == nil || p.Opportunities == nil {
			t.Errorf("unexpected fallback pillar %+v", p)
		}
	}
}

func TestPersonas(t *testing.T) {
	raw := "```json\n" + `{"personas":[{"name":"Maya","role":"Founder","goals":["ship"],"pain_points":["time"]},{"role":"nameless"}]}` + "\n```"

	got := Personas(raw)
	want := []types.Persona{{
		Name:       "Maya",
		Role:       "Founder",
		Goals:      []string{"ship"},
		PainPoints: []string{"time"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Personas mismatch (-want +got):\n%s", diff)
	}
}

func TestPersonas_Fallback(t *testing.T) {
	if got := Personas("no json"); got == nil || len(got) != 0 {
		t.Errorf("Personas fallback = %#v, want empty non-nil", got)
	}
}

func TestFeatureMap(t *testing.T) {
	got := FeatureMap(`{"must":["login"," "],"should":"export","wontHave":["ai"]}`)
	want := types.FeatureMap{
		Must:   []string{"login"},
		Should: []string{"export"},
		Could:  []string{},
		Avoid:  []string{"ai"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FeatureMap mismatch (-want +got):\n%s", diff)
	}
}

func TestFeatureMap_Fallback(t *testing.T) {
	got := FeatureMap("nothing useful")
	if got.Must == nil || got.Should == nil || got.Could == nil || got.Avoid == nil {
		t.Errorf("fallback lists must be non-nil: %#v", got)
	}
}

func TestRiskRadar(t *testing.T) {
	got := RiskRadar(`{"market":4,"competition":11,"technical":"2","monetization":3,"gtm":5,"commentary":"ok"}`)
	want := types.RiskRadar{Market: 4, Competition: 10, Technical: 2, Monetisation: 3, GoToMarket: 5, Commentary: "ok"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RiskRadar mismatch (-want +got):\n%s", diff)
	}
}

func TestRiskRadar_ProseBecomesCommentary(t *testing.T) {
	got := RiskRadar("  Risky market.  ")
	if got.Commentary != "Risky market." || got.Market != 0 {
		t.Errorf("unexpected fallback %+v", got)
	}
}

func TestOpportunityScore(t *testing.T) {
	got := OpportunityScore(`{"opportunityScore":{"score":140,"breakdown":[{"label":"demand","score":30},{"score":5}],"rationale":"r"}}`)
	want := types.OpportunityScore{
		Score:     100,
		Breakdown: []types.ScoreBreakdown{{Label: "demand", Score: 30}},
		Rationale: "r",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("OpportunityScore mismatch (-want +got):\n%s", diff)
	}
}

func TestOpportunityScore_Fallback(t *testing.T) {
	got := OpportunityScore("")
	if got.Score != 0 || got.Breakdown == nil || got.Rationale != "" {
		t.Errorf("unexpected fallback %+v", got)
	}
}

func TestSectionAnalysis(t *testing.T) {
	got := SectionAnalysis(`{"summary":"crowded","insights":[{"label":"A","detail":"x"},"plain"]}`)
	if got.Summary != "crowded" {
		t.Errorf("Summary = %q", got.Summary)
	}
	wantInsights := []types.Insight{{Label: "A", Detail: "x"}, {Detail: "plain"}}
	if diff := cmp.Diff(wantInsights, got.Insights); diff != "" {
		t.Errorf("Insights mismatch (-want +got):\n%s", diff)
	}
	if got.CompletedActions == nil || got.PersonaReactions == nil {
		t.Error("lists must be non-nil")
	}
}

func TestSectionAnalysis_ProseBecomesSummary(t *testing.T) {
	got := SectionAnalysis("The market is large.")
	if got.Summary != "The market is large." {
		t.Errorf("Summary = %q", got.Summary)
	}
}

func TestDeepDive_DedupesActions(t *testing.T) {
	got := DeepDive(`{"summary":"s","details":["d"],"nextSteps":["Do X","Do X","Do Y"]}`)
	if diff := cmp.Diff([]string{"Do X", "Do Y"}, got.Actions); diff != "" {
		t.Errorf("Actions mismatch (-want +got):\n%s", diff)
	}
}

func TestPersonaReactions(t *testing.T) {
	got := PersonaReactions(`{"reactions":[{"persona":"Maya","sentiment":"POSITIVE","reaction":"love it"},{"persona":"Bo","sentiment":"meh","reaction":"hm"},{"persona":"","reaction":"x"}]}`)
	want := []types.PersonaReaction{
		{Persona: "Maya", Sentiment: "positive", Reaction: "love it"},
		{Persona: "Bo", Sentiment: "neutral", Reaction: "hm"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PersonaReactions mismatch (-want +got):\n%s", diff)
	}
}

func TestIdeaEnhancement_Fallback(t *testing.T) {
	got := IdeaEnhancement("Make it a marketplace.")
	if got.Pitch != "Make it a marketplace." || got.Changes == nil {
		t.Errorf("unexpected fallback %+v", got)
	}
}

func TestIdeate(t *testing.T) {
	raw := `{"headline":"H","narrative":"N","quickTakes":[{"label":"TAM","value":"$1B","delta":"+"}],
		"pillars":[{"id":"marketSize","score":8}],
		"suggestions":["a","a","b"],
		"experiments":[{"title":"Landing page","hypothesis":"people sign up"},"Interviews"]}`

	snap := Ideate(raw)

	if snap.Headline != "H" || snap.Narrative != "N" {
		t.Errorf("headline/narrative = %q/%q", snap.Headline, snap.Narrative)
	}
	if len(snap.Pillars) != 7 || snap.Pillars[4].Score != 8 {
		t.Errorf("pillars = %+v", snap.Pillars)
	}
	if diff := cmp.Diff([]string{"a", "b"}, snap.Suggestions); diff != "" {
		t.Errorf("Suggestions mismatch (-want +got):\n%s", diff)
	}
	wantEx := []ExperimentDraft{{Title: "Landing page", Hypothesis: "people sign up"}, {Title: "Interviews"}}
	if diff := cmp.Diff(wantEx, snap.Experiments); diff != "" {
		t.Errorf("Experiments mismatch (-want +got):\n%s", diff)
	}
}

func TestIdeate_Fallback(t *testing.T) {
	snap := Ideate("Nice idea")
	if snap.Narrative != "Nice idea" || len(snap.Pillars) != 7 || snap.QuickTakes == nil || snap.Experiments == nil {
		t.Errorf("unexpected fallback %+v", snap)
	}
}

func TestBlueprintSection(t *testing.T) {
	tests := []struct {
		name    string
		section string
		raw     string
		want    map[string]any
	}{
		{"object passthrough", "offer_plan", `{"offer":"x"}`, map[string]any{"offer": "x"}},
		{"array wrapped", "retention_levers", `[1]`, map[string]any{"items": []any{float64(1)}}},
		{"prose", "offer_plan", "Give a discount.", map[string]any{"content": "Give a discount."}},
		{"empty", "offer_plan", "", map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]any
			if err := json.Unmarshal(BlueprintSection(tt.section, tt.raw), &got); err != nil {
				t.Fatalf("result is not a JSON object: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBlueprintSection_MessagingFrameworkIsTyped(t *testing.T) {
	raw := BlueprintSection("messaging_framework", `{"positioning":"P","value_props":["v"]}`)

	var mf types.MessagingFramework
	if err := json.Unmarshal(raw, &mf); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if mf.Positioning != "P" || len(mf.ValueProps) != 1 || mf.Taglines == nil {
		t.Errorf("unexpected framework %+v", mf)
	}
}

func TestBuildPlan(t *testing.T) {
	got := BuildPlan("vibe_coder", `{"summary":"s","stack":["go"],"milestones":["m1"],"prompts":["p1"]}`)
	want := types.BuildPlan{Mode: "vibe_coder", Summary: "s", Stack: []string{"go"}, Milestones: []string{"m1"}, Prompts: []string{"p1"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildPlan mismatch (-want +got):\n%s", diff)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(11, 0, 10) != 10 || Clamp(-1, 0, 10) != 0 || Clamp(5, 0, 10) != 5 {
		t.Error("Clamp bounds incorrect")
	}
}
