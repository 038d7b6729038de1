package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveHTTP_CountsByRouteAndStatus(t *testing.T) {
	m := New()

	m.ObserveHTTP("/api/v1/projects", http.MethodGet, 200, 10*time.Millisecond)
	m.ObserveHTTP("/api/v1/projects", http.MethodGet, 200, 10*time.Millisecond)
	m.ObserveHTTP("", http.MethodGet, 404, time.Millisecond)

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/v1/projects", "GET", "200")); got != 2 {
		t.Errorf("projects counter = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("unmatched", "GET", "404")); got != 1 {
		t.Errorf("unmatched counter = %v, want 1", got)
	}
}

func TestObserveLLM_Outcomes(t *testing.T) {
	m := New()

	m.ObserveLLM("pillars", nil, time.Second)
	m.ObserveLLM("pillars", errors.New("boom"), time.Second)

	if got := testutil.ToFloat64(m.llmRequests.WithLabelValues("pillars", "success")); got != 1 {
		t.Errorf("success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.llmRequests.WithLabelValues("pillars", "error")); got != 1 {
		t.Errorf("error = %v, want 1", got)
	}
}

func TestObserveRun(t *testing.T) {
	m := New()

	m.ObserveRun("", nil)
	m.ObserveRun("personas", errors.New("boom"))

	if got := testutil.ToFloat64(m.runs.WithLabelValues("ready", "")); got != 1 {
		t.Errorf("ready = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("failed", "personas")); got != 1 {
		t.Errorf("failed = %v, want 1", got)
	}
}

func TestNilMetrics_IsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveHTTP("/x", "GET", 200, time.Millisecond)
	m.ObserveLLM("x", nil, time.Millisecond)
	m.ObserveRun("", nil)
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveLLM("personas", nil, time.Second)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ideaforge_llm_requests_total") {
		t.Error("metrics output missing ideaforge_llm_requests_total")
	}
}
