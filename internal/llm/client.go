// Package llm sends prompts to a hosted chat-completion API.
package llm

import (
	"context"
	"errors"
)

// ErrGenerationFailed wraps every failure to obtain a completion.
var ErrGenerationFailed = errors.New("generation failed")

// Request is a single system+user exchange.
type Request struct {
	// Task labels the request for logging and metrics.
	Task   string
	Model  string
	System string
	User   string
}

// Client defines the interface contract for chat-completion providers.
// Complete makes exactly one attempt and returns the first choice's text,
// or "" when the provider returns no choices.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
