package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hyperengineering/ideaforge/internal/auth"
	"github.com/hyperengineering/ideaforge/internal/metrics"
)

// RouterConfig carries the cross-cutting collaborators of the router.
// Metrics and Limiter are optional.
type RouterConfig struct {
	Verifier    *auth.Verifier
	Metrics     *metrics.Metrics
	MetricsPath string
	Limiter     *GenerationLimiter
}

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	if cfg.Metrics != nil {
		r.Use(MetricsMiddleware(cfg.Metrics))
	}
	r.Use(RecoveryMiddleware)

	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.Metrics.Handler())
	}

	generate := cfg.Limiter.Middleware
	byID := h.guard.URLParam("id")
	byQuery := h.guard.Query("projectId")

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Get("/health", h.Health)

		// Protected routes (auth required)
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.Verifier))

			r.Get("/projects", h.ListProjects)
			r.Post("/projects", h.CreateProject)
			r.Route("/projects/{id}", func(r chi.Router) {
				r.Use(byID)
				r.Get("/", h.GetProject)
				r.Patch("/", h.UpdateProject)
				r.Get("/stages", h.ListStages)
				r.Post("/stages", h.UpsertStage)
				r.Get("/blueprints/{kind}", h.GetBlueprint)
				r.With(generate).Post("/blueprints/{kind}/sections/{sectionId}/generate", h.GenerateBlueprintSection)
				r.Patch("/blueprints/{kind}/sections/{sectionId}", h.SetBlueprintCompletion)
				r.With(generate).Post("/build/plan", h.GenerateBuildPlan)
			})

			r.With(byQuery).Get("/validate", h.ListReports)
			r.With(generate).Post("/validate", h.StartValidation)
			r.Get("/validate/status", h.ReportStatus)
			r.With(generate).Post("/validate/improve", h.Improve)
			r.Post("/validate/actions/toggle", h.ToggleAction)

			r.Route("/validation", func(r chi.Router) {
				r.Use(generate)
				r.Post("/personas", h.RegeneratePersonas)
				r.Post("/feature-map", h.RegenerateFeatureMap)
				r.Post("/sections/{section}", h.SectionAnalysis)
				r.Post("/deep-dive/{section}", h.DeepDive)
				r.Post("/section-reactions/{section}", h.SectionReactions)
			})

			r.With(generate).Post("/ideate/run", h.CreateIdeateRun)
			r.With(byQuery).Get("/ideate/run", h.LatestIdeateRun)
			r.Post("/ideate/pillar/{pillarId}/regenerate", h.RegeneratePillar)
			r.Post("/ideate/suggestions/{suggestionId}/apply", h.ApplySuggestion)
			r.Patch("/ideate/experiments/{experimentId}", h.UpdateExperiment)

			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Get("/ai-config/{stage}", h.GetAIConfig)
				r.Put("/ai-config/{stage}", h.PutAIConfig)
				r.Get("/stage-settings", h.ListStageSettings)
				r.Post("/stage-settings", h.UpsertStageSetting)
			})
		})
	})

	return r
}
