// Package metrics exposes Prometheus collectors for the analysis pipeline
// and HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Metrics holds every collector the service registers. Collectors are
// created against a dedicated registry so tests can instantiate the set
// more than once without duplicate-registration panics.
type Metrics struct {
	registry *prometheus.Registry

	AnalysisTotal      *prometheus.CounterVec
	AnalysisDuration   prometheus.Histogram
	RecordsProcessed   prometheus.Counter
	RecordsDropped     prometheus.Counter
	NarrativeFallbacks *prometheus.CounterVec
	ExportTotal        *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

// New creates the collector set on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		AnalysisTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flightpulse_analysis_total",
			Help: "Completed analysis runs by outcome.",
		}, []string{"outcome"}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "flightpulse_analysis_duration_seconds",
			Help:    "End-to-end analysis run duration.",
			Buckets: prometheus.DefBuckets,
		}),
		RecordsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "flightpulse_records_processed_total",
			Help: "Raw records accepted into the pipeline.",
		}),
		RecordsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "flightpulse_records_dropped_total",
			Help: "Records removed by dedup and outlier filtering.",
		}),
		NarrativeFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flightpulse_narrative_fallback_total",
			Help: "Narrative analyses served by the offline generator, by reason class.",
		}, []string{"reason"}),
		ExportTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flightpulse_export_total",
			Help: "Report exports by format.",
		}, []string{"format"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flightpulse_http_request_duration_seconds",
			Help:    "HTTP request duration by path and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "status"}),
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request durations labelled by route pattern and status.
// The pattern is read from the chi route context after serving so path
// parameters and unmatched garbage paths cannot inflate label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		m.HTTPDuration.WithLabelValues(path, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}

// ObserveAnalysis records one analysis run.
func (m *Metrics) ObserveAnalysis(outcome string, duration time.Duration, processed, dropped int) {
	m.AnalysisTotal.WithLabelValues(outcome).Inc()
	m.AnalysisDuration.Observe(duration.Seconds())
	m.RecordsProcessed.Add(float64(processed))
	m.RecordsDropped.Add(float64(dropped))
}
