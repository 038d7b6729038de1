package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/ideaforge/internal/store"
	"github.com/hyperengineering/ideaforge/internal/types"
)

// Guard is the single project ownership check. A project that does not exist
// and a project owned by someone else are indistinguishable to the caller.
type Guard struct {
	projects store.ProjectStore
}

// NewGuard creates a Guard over the project store.
func NewGuard(projects store.ProjectStore) *Guard {
	return &Guard{projects: projects}
}

// Owned loads projectID when the authenticated caller owns it. It writes the
// problem response and returns nil otherwise.
func (g *Guard) Owned(w http.ResponseWriter, r *http.Request, projectID string) *types.Project {
	if projectID == "" {
		WriteProblem(w, r, http.StatusBadRequest, "projectId is required")
		return nil
	}
	userID := UserIDFromContext(r.Context())
	if userID == "" {
		WriteProblem(w, r, http.StatusUnauthorized, "Missing or invalid credentials")
		return nil
	}

	p, err := g.projects.GetOwnedProject(r.Context(), projectID, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("ownership check failed", "project_id", projectID, "error", err)
		}
		MapStoreError(w, r, "load project", err)
		return nil
	}
	return p
}

// URLParam guards routes whose project ID is the chi URL parameter name and
// stores the project in the request context.
func (g *Guard) URLParam(name string) func(http.Handler) http.Handler {
	return g.middleware(func(r *http.Request) string {
		return chi.URLParam(r, name)
	})
}

// Query guards routes whose project ID is the query parameter name.
func (g *Guard) Query(name string) func(http.Handler) http.Handler {
	return g.middleware(func(r *http.Request) string {
		return r.URL.Query().Get(name)
	})
}

func (g *Guard) middleware(projectID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := g.Owned(w, r, projectID(r))
			if p == nil {
				return
			}
			next.ServeHTTP(w, r.WithContext(WithProject(r.Context(), p)))
		})
	}
}
