package api

import (
	"context"
	"errors"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/hyperengineering/ideaforge/internal/auth"
	"github.com/hyperengineering/ideaforge/internal/types"
)

// projectContextKey is the context key for the guarded project.
type projectContextKey struct{}

// ErrNoProjectInContext indicates no guarded project was found in the context.
var ErrNoProjectInContext = errors.New("no project in context")

// WithProject returns a new context with the owned project attached.
func WithProject(ctx context.Context, p *types.Project) context.Context {
	return context.WithValue(ctx, projectContextKey{}, p)
}

// ProjectFromContext extracts the guarded project from the context.
// Returns ErrNoProjectInContext if not present or nil.
func ProjectFromContext(ctx context.Context) (*types.Project, error) {
	p, ok := ctx.Value(projectContextKey{}).(*types.Project)
	if !ok || p == nil {
		return nil, ErrNoProjectInContext
	}
	return p, nil
}

// MustProjectFromContext extracts the project or panics.
// Use only when the project guard middleware is mounted on the route.
func MustProjectFromContext(ctx context.Context) *types.Project {
	p, err := ProjectFromContext(ctx)
	if err != nil {
		panic("project not in context: middleware misconfiguration")
	}
	return p
}

// UserIDFromContext returns the authenticated caller's user ID, or "" when
// the request did not pass through AuthMiddleware.
func UserIDFromContext(ctx context.Context) string {
	id, ok := auth.FromContext(ctx)
	if !ok {
		return ""
	}
	return id.UserID
}

// GetRequestID returns the chi request ID, or "" when none was assigned.
func GetRequestID(ctx context.Context) string {
	return middleware.GetReqID(ctx)
}
