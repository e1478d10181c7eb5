package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAnalysis(t *testing.T) {
	m := New()

	m.ObserveAnalysis("success", 120*time.Millisecond, 100, 3)
	m.ObserveAnalysis("success", 80*time.Millisecond, 50, 0)
	m.ObserveAnalysis("error", 10*time.Millisecond, 0, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AnalysisTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysisTotal.WithLabelValues("error")))
	assert.Equal(t, 150.0, testutil.ToFloat64(m.RecordsProcessed))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RecordsDropped))
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/insights", nil))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "flightpulse_http_request_duration_seconds")
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/flights/{route}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/flights/SYD-MEL", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/flights/MEL-BNE", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/%22%3E%3Cscript%3E", nil))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()

	// Both parameterized requests collapse onto one series; the garbage
	// path lands in the unmatched bucket instead of minting a label.
	assert.Contains(t, body, `path="/flights/{route}"`)
	assert.NotContains(t, body, "SYD-MEL")
	assert.NotContains(t, body, "script")
}

func TestIndependentRegistries(t *testing.T) {
	// Two instances must not panic on duplicate registration.
	assert.NotPanics(t, func() {
		_ = New()
		_ = New()
	})
}
