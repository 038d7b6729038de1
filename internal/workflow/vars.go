package workflow

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/hyperengineering/ideaforge/internal/types"
)

// ideaVars seeds template variables shared by every validation prompt.
func ideaVars(idea types.Idea) map[string]string {
	return map[string]string{
		"idea_title":   idea.Title,
		"idea_summary": idea.Summary,
	}
}

func projectVars(p *types.Project) map[string]string {
	return map[string]string{
		"project_title":       p.Title,
		"project_description": p.Description,
	}
}

func describePillars(pillars []types.Pillar) string {
	return strings.Join(lo.Map(pillars, func(p types.Pillar, _ int) string {
		return fmt.Sprintf("%s %.1f/10", p.ID, p.Score)
	}), ", ")
}

func describePersonas(personas []types.Persona) string {
	if len(personas) == 0 {
		return "none yet"
	}
	return strings.Join(lo.Map(personas, func(p types.Persona, _ int) string {
		if p.Role == "" {
			return p.Name
		}
		return p.Name + " (" + p.Role + ")"
	}), "; ")
}

func describeList(items []string) string {
	if len(items) == 0 {
		return "none yet"
	}
	return strings.Join(items, ", ")
}

func describeRiskRadar(r types.RiskRadar) string {
	return fmt.Sprintf("market %.0f, competition %.0f, technical %.0f, monetisation %.0f, go-to-market %.0f",
		r.Market, r.Competition, r.Technical, r.Monetisation, r.GoToMarket)
}

func reportVars(r *types.ValidationReport) map[string]string {
	vars := ideaVars(r.Idea)
	vars["pillars"] = describePillars(r.Pillars)
	vars["personas"] = describePersonas(r.Personas)
	vars["must_features"] = describeList(r.FeatureMap.Must)
	vars["risk_radar"] = describeRiskRadar(r.RiskRadar)
	vars["opportunity_score"] = fmt.Sprintf("%.0f/100", r.OpportunityScore.Score)
	return vars
}
