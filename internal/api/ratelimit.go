package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// GenerationLimiter throttles model-backed routes per caller. Each user gets
// a token bucket holding burst requests, refilled one token per interval.
type GenerationLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*rate.Limiter
	interval time.Duration
	burst    int
}

// NewGenerationLimiter creates a limiter. A zero burst disables limiting.
func NewGenerationLimiter(burst int, interval time.Duration) *GenerationLimiter {
	return &GenerationLimiter{
		buckets:  make(map[string]*rate.Limiter),
		interval: interval,
		burst:    burst,
	}
}

func (l *GenerationLimiter) limiter(userID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.buckets[userID]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.interval), l.burst)
		l.buckets[userID] = lim
	}
	return lim
}

// generationBudgetKey carries the limiter from Middleware to the handler.
type generationBudgetKey struct{}

// Middleware marks a route as model-backed. The handler spends the token via
// spendGeneration after validation and the ownership check.
// Must be mounted after AuthMiddleware.
func (l *GenerationLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l == nil || l.burst <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), generationBudgetKey{}, l)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// spendGeneration takes one token from the caller's bucket. When the bucket
// is empty it writes 429 with Retry-After and returns false. Routes without
// the limiter always pass.
func spendGeneration(w http.ResponseWriter, r *http.Request) bool {
	l, ok := r.Context().Value(generationBudgetKey{}).(*GenerationLimiter)
	if !ok {
		return true
	}
	userID := UserIDFromContext(r.Context())
	if l.limiter(userID).Allow() {
		return true
	}
	slog.Warn("generation rate limited", "user_id", userID, "path", r.URL.Path)
	w.Header().Set("Retry-After", strconv.Itoa(int(l.interval.Seconds())+1))
	WriteProblem(w, r, http.StatusTooManyRequests, "Too many generation requests, retry later")
	return false
}

// Prune drops buckets that have refilled completely. Those callers are idle
// and start with a full bucket again on their next request. Returns the
// number of buckets removed.
func (l *GenerationLimiter) Prune() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for userID, lim := range l.buckets {
		if lim.Tokens() >= float64(l.burst) {
			delete(l.buckets, userID)
			removed++
		}
	}
	return removed
}

// RunPruner calls Prune every interval until ctx is cancelled.
func (l *GenerationLimiter) RunPruner(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Prune(); n > 0 {
				slog.Debug("generation limiter pruned", "buckets", n)
			}
		}
	}
}
