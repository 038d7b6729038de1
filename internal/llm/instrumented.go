package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/hyperengineering/ideaforge/internal/metrics"
)

// Instrumented wraps c so every completion is timed, counted and logged.
func Instrumented(c Client, m *metrics.Metrics) Client {
	return ClientFunc(func(ctx context.Context, req Request) (string, error) {
		start := time.Now()
		out, err := c.Complete(ctx, req)
		elapsed := time.Since(start)
		m.ObserveLLM(req.Task, err, elapsed)

		if err != nil {
			slog.Error("completion failed",
				"component", "llm",
				"task", req.Task,
				"model", req.Model,
				"duration_ms", elapsed.Milliseconds(),
				"error", err,
			)
			return "", err
		}
		slog.Debug("completion finished",
			"component", "llm",
			"task", req.Task,
			"model", req.Model,
			"duration_ms", elapsed.Milliseconds(),
			"response_chars", len(out),
		)
		return out, nil
	})
}
