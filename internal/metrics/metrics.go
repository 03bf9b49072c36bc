// Package metrics exposes Prometheus counters for settings resolution and the
// diagnostic HTTP server.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eugenenazirov/lambda-settings/internal/settings"
)

// Metrics owns its registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	resolutions  *prometheus.CounterVec
	fieldSources *prometheus.GaugeVec
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry:    prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "settings_resolutions_total", Help: "Settings resolutions by outcome"},
			[]string{"outcome"},
		),
		fieldSources: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "settings_field_source", Help: "1 for the tier that supplied each field"},
			[]string{"field", "source"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "http_requests_total", Help: "HTTP requests by path, method and status"},
			[]string{"path", "method", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request latency in seconds", Buckets: prometheus.DefBuckets},
			[]string{"path", "method"},
		),
	}
	m.registry.MustRegister(m.resolutions, m.fieldSources, m.httpRequests, m.httpLatency)
	return m
}

// ObserveResolution records the outcome of one Resolve call. Only field names
// and source tags are exported, never values.
func (m *Metrics) ObserveResolution(s *settings.Settings, err error) {
	switch {
	case err == nil:
		m.resolutions.WithLabelValues("ok").Inc()
	case errors.Is(err, settings.ErrMissingRequiredValue):
		m.resolutions.WithLabelValues("missing_required").Inc()
	case errors.Is(err, settings.ErrInvalidConfiguration):
		m.resolutions.WithLabelValues("invalid").Inc()
	default:
		m.resolutions.WithLabelValues("error").Inc()
	}
	if s == nil {
		return
	}

	m.fieldSources.Reset()
	for _, f := range s.Fields() {
		m.fieldSources.WithLabelValues(f.Name, s.Source(f.Name).String()).Set(1)
	}
}

// Middleware counts requests and their latency. pattern maps a request to a
// bounded label, normally the matched route.
func (m *Metrics) Middleware(pattern func(*http.Request) string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		path := pattern(r)
		m.httpLatency.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
		m.httpRequests.WithLabelValues(path, r.Method, strconv.Itoa(rec.status)).Inc()
	})
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
