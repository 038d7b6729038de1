package parse

import (
	"encoding/json"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/hyperengineering/ideaforge/internal/types"
)

// Pillars always returns the seven fixed pillars in canonical order.
// Unknown ids are dropped; missing pillars score 0 with empty texts.
func Pillars(raw string) []types.Pillar {
	return pillarsFrom(newDocument(raw).list("pillars", "scores"))
}

func pillarsFrom(items []gjson.Result) []types.Pillar {
	byID := make(map[types.PillarID]gjson.Result)
	for _, item := range items {
		if id, ok := matchPillar(firstString(item, "id", "pillar", "key", "name", "label")); ok {
			if _, dup := byID[id]; !dup {
				byID[id] = item
			}
		}
	}

	pillars := make([]types.Pillar, 0, len(types.PillarIDs))
	for _, id := range types.PillarIDs {
		p := EmptyPillar(id)
		if item, ok := byID[id]; ok {
			p.Score = round1(Clamp(firstNumber(item, "score", "value"), types.MinPillarScore, types.MaxPillarScore))
			p.Strength = firstString(item, "strength")
			p.Weakness = firstString(item, "weakness")
			p.Improvement = firstString(item, "improvement")
			p.Opportunities = capList(stringList(item.Get("opportunities")), types.MaxPillarNotes)
			p.Risks = capList(stringList(item.Get("risks")), types.MaxPillarNotes)
		}
		pillars = append(pillars, p)
	}
	return pillars
}

// EmptyPillar returns a zero-score pillar with non-nil lists.
func EmptyPillar(id types.PillarID) types.Pillar {
	return types.Pillar{
		ID:            id,
		Label:         types.PillarLabels[id],
		Opportunities: []string{},
		Risks:         []string{},
	}
}

// matchPillar accepts a pillar id or label in any case, with spaces,
// hyphens or underscores.
func matchPillar(s string) (types.PillarID, bool) {
	norm := normalizeKey(s)
	if norm == "" {
		return "", false
	}
	for _, id := range types.PillarIDs {
		if normalizeKey(string(id)) == norm || normalizeKey(types.PillarLabels[id]) == norm {
			return id, true
		}
	}
	return "", false
}

func normalizeKey(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}

func capList(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// Personas returns the personas that have a name; [] otherwise.
func Personas(raw string) []types.Persona {
	items := newDocument(raw).list("personas")
	personas := lo.FilterMap(items, func(item gjson.Result, _ int) (types.Persona, bool) {
		name := firstString(item, "name")
		if name == "" {
			return types.Persona{}, false
		}
		return types.Persona{
			Name:       name,
			Role:       firstString(item, "role", "title", "occupation"),
			Goals:      stringList(item.Get("goals")),
			PainPoints: stringList(firstPresent(item, "painPoints", "pain_points", "pains")),
			Quote:      firstString(item, "quote"),
		}, true
	})
	if personas == nil {
		return []types.Persona{}
	}
	return personas
}

func firstPresent(r gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

// FeatureMap returns four lists, each empty when absent.
func FeatureMap(raw string) types.FeatureMap {
	d := newDocument(raw)
	root := d.get("featureMap", "feature_map")
	if !root.Exists() && d.ok {
		root = d.root
	}
	return types.FeatureMap{
		Must:   stringList(firstPresent(root, "must", "mustHave", "must_have")),
		Should: stringList(firstPresent(root, "should", "shouldHave", "should_have")),
		Could:  stringList(firstPresent(root, "could", "couldHave", "could_have")),
		Avoid:  stringList(firstPresent(root, "avoid", "wont", "wontHave", "won't")),
	}
}

// RiskRadar clamps every dimension to [0, 10]. When the response is not
// JSON the scores are 0 and the trimmed text becomes the commentary.
func RiskRadar(raw string) types.RiskRadar {
	d := newDocument(raw)
	if !d.ok {
		return types.RiskRadar{Commentary: d.fallbackText(raw)}
	}
	root := d.get("riskRadar", "risk_radar")
	if !root.Exists() {
		root = d.root
	}
	risk := func(keys ...string) float64 {
		return round1(Clamp(firstNumber(root, keys...), 0, 10))
	}
	return types.RiskRadar{
		Market:       risk("market"),
		Competition:  risk("competition"),
		Technical:    risk("technical"),
		Monetisation: risk("monetisation", "monetization"),
		GoToMarket:   risk("goToMarket", "go_to_market", "gtm"),
		Commentary:   firstString(root, "commentary", "summary"),
	}
}

// OpportunityScore clamps the score to [0, 100]. When the response is not
// JSON the score is 0 and the trimmed text becomes the rationale.
func OpportunityScore(raw string) types.OpportunityScore {
	d := newDocument(raw)
	if !d.ok {
		return types.OpportunityScore{Breakdown: []types.ScoreBreakdown{}, Rationale: d.fallbackText(raw)}
	}
	root := d.get("opportunityScore", "opportunity_score")
	if !root.IsObject() {
		root = d.root
	}
	breakdown := lo.FilterMap(root.Get("breakdown").Array(), func(item gjson.Result, _ int) (types.ScoreBreakdown, bool) {
		label := firstString(item, "label", "name")
		return types.ScoreBreakdown{Label: label, Score: round1(firstNumber(item, "score", "value"))}, label != ""
	})
	if breakdown == nil {
		breakdown = []types.ScoreBreakdown{}
	}
	return types.OpportunityScore{
		Score:     round1(Clamp(firstNumber(root, "score", "overall"), 0, 100)),
		Breakdown: breakdown,
		Rationale: firstString(root, "rationale", "summary"),
	}
}

// SectionAnalysis returns a baseline section result. When the response is
// not JSON the trimmed text becomes the summary.
func SectionAnalysis(raw string) types.SectionResult {
	d := newDocument(raw)
	result := types.SectionResult{
		Insights:         []types.Insight{},
		PersonaReactions: []types.PersonaReaction{},
		CompletedActions: []string{},
	}
	if !d.ok {
		result.Summary = d.fallbackText(raw)
		return result
	}
	result.Summary = firstString(d.root, "summary")
	insights := lo.FilterMap(d.list("insights", "breakdown"), func(item gjson.Result, _ int) (types.Insight, bool) {
		if item.Type == gjson.String {
			s := strings.TrimSpace(item.String())
			return types.Insight{Detail: s}, s != ""
		}
		in := types.Insight{Label: firstString(item, "label", "title"), Detail: firstString(item, "detail", "text", "description")}
		return in, in.Label != "" || in.Detail != ""
	})
	if insights != nil {
		result.Insights = insights
	}
	return result
}

// DeepDive returns the expanded analysis. When the response is not JSON the
// trimmed text becomes the summary.
func DeepDive(raw string) types.DeepDive {
	d := newDocument(raw)
	if !d.ok {
		return types.DeepDive{Summary: d.fallbackText(raw), Details: []string{}, Actions: []string{}}
	}
	return types.DeepDive{
		Summary: firstString(d.root, "summary"),
		Details: stringList(firstPresent(d.root, "details", "points")),
		Actions: lo.Uniq(stringList(firstPresent(d.root, "actions", "nextSteps", "next_steps"))),
	}
}

// PersonaReactions returns reactions with a persona and text; [] otherwise.
func PersonaReactions(raw string) []types.PersonaReaction {
	items := newDocument(raw).list("reactions", "personaReactions")
	reactions := lo.FilterMap(items, func(item gjson.Result, _ int) (types.PersonaReaction, bool) {
		r := types.PersonaReaction{
			Persona:   firstString(item, "persona", "name"),
			Sentiment: normalizeSentiment(firstString(item, "sentiment")),
			Reaction:  firstString(item, "reaction", "text", "quote"),
		}
		return r, r.Persona != "" && r.Reaction != ""
	})
	if reactions == nil {
		return []types.PersonaReaction{}
	}
	return reactions
}

func normalizeSentiment(s string) string {
	switch strings.ToLower(s) {
	case "positive", "negative":
		return strings.ToLower(s)
	default:
		return "neutral"
	}
}

// IdeaEnhancement returns the rewrite. When the response is not JSON the
// trimmed text becomes the pitch.
func IdeaEnhancement(raw string) types.IdeaEnhancement {
	d := newDocument(raw)
	if !d.ok {
		return types.IdeaEnhancement{Pitch: d.fallbackText(raw), Changes: []string{}}
	}
	return types.IdeaEnhancement{
		ImprovedTitle: firstString(d.root, "improvedTitle", "improved_title", "title"),
		Pitch:         firstString(d.root, "pitch", "summary"),
		Changes:       stringList(firstPresent(d.root, "changes", "improvements")),
	}
}

// IdeateSnapshot is the parsed content of an ideate run before ids are assigned.
type IdeateSnapshot struct {
	Headline    string
	Narrative   string
	QuickTakes  []types.QuickTake
	Pillars     []types.Pillar
	Suggestions []string
	Experiments []ExperimentDraft
}

// ExperimentDraft is an experiment without id or status.
type ExperimentDraft struct {
	Title      string
	Hypothesis string
}

// Ideate parses an ideation snapshot. When the response is not JSON the
// trimmed text becomes the narrative and every pillar scores 0.
func Ideate(raw string) IdeateSnapshot {
	d := newDocument(raw)
	snap := IdeateSnapshot{
		QuickTakes:  []types.QuickTake{},
		Suggestions: []string{},
		Experiments: []ExperimentDraft{},
	}
	if !d.ok {
		snap.Narrative = d.fallbackText(raw)
		snap.Pillars = pillarsFrom(nil)
		return snap
	}

	snap.Headline = firstString(d.root, "headline", "title")
	snap.Narrative = firstString(d.root, "narrative", "summary")
	snap.Pillars = pillarsFrom(d.list("pillars"))
	snap.Suggestions = lo.Uniq(stringList(d.get("suggestions")))

	if qt := lo.FilterMap(d.get("quickTakes", "quick_takes").Array(), func(item gjson.Result, _ int) (types.QuickTake, bool) {
		q := types.QuickTake{
			Label: firstString(item, "label"),
			Value: firstString(item, "value"),
			Delta: firstString(item, "delta"),
		}
		return q, q.Label != ""
	}); qt != nil {
		snap.QuickTakes = qt
	}

	if ex := lo.FilterMap(d.get("experiments").Array(), func(item gjson.Result, _ int) (ExperimentDraft, bool) {
		if item.Type == gjson.String {
			s := strings.TrimSpace(item.String())
			return ExperimentDraft{Title: s}, s != ""
		}
		e := ExperimentDraft{Title: firstString(item, "title", "name"), Hypothesis: firstString(item, "hypothesis")}
		return e, e.Title != ""
	}); ex != nil {
		snap.Experiments = ex
	}
	return snap
}

// MessagingFramework returns the positioning section with non-nil lists.
func MessagingFramework(raw string) types.MessagingFramework {
	d := newDocument(raw)
	root := d.get("messagingFramework", "messaging_framework")
	if !root.Exists() && d.ok {
		root = d.root
	}
	mf := types.MessagingFramework{
		Positioning: firstString(root, "positioning"),
		ValueProps:  stringList(firstPresent(root, "valueProps", "value_props")),
		Taglines:    stringList(root.Get("taglines")),
		ProofPoints: stringList(firstPresent(root, "proofPoints", "proof_points")),
		ToneOfVoice: firstString(root, "toneOfVoice", "tone_of_voice", "tone"),
	}
	if !d.ok {
		mf.Positioning = d.fallbackText(raw)
	}
	return mf
}

// BlueprintSection returns a JSON object for a generated blueprint section:
// the typed messaging framework, the response's first JSON object, {} for an
// empty response, or {"content": text} for prose.
func BlueprintSection(section, raw string) json.RawMessage {
	if section == "messaging_framework" {
		b, _ := json.Marshal(MessagingFramework(raw))
		return b
	}
	d := newDocument(raw)
	if d.ok && d.root.IsObject() {
		return json.RawMessage(d.root.Raw)
	}
	if d.ok && d.root.IsArray() {
		b, _ := json.Marshal(map[string]json.RawMessage{"items": json.RawMessage(d.root.Raw)})
		return b
	}
	text := d.fallbackText(raw)
	if text == "" {
		return json.RawMessage(`{}`)
	}
	b, _ := json.Marshal(map[string]string{"content": text})
	return b
}

// BuildPlan returns the build plan for mode. When the response is not JSON
// the trimmed text becomes the summary.
func BuildPlan(mode, raw string) types.BuildPlan {
	d := newDocument(raw)
	if !d.ok {
		return types.BuildPlan{Mode: mode, Summary: d.fallbackText(raw), Stack: []string{}, Milestones: []string{}, Prompts: []string{}}
	}
	return types.BuildPlan{
		Mode:       mode,
		Summary:    firstString(d.root, "summary"),
		Stack:      stringList(d.root.Get("stack")),
		Milestones: stringList(d.root.Get("milestones")),
		Prompts:    stringList(d.root.Get("prompts")),
	}
}
