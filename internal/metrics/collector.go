// Package metrics counts catalog lookups per surface and exposes them in Prometheus format.
// file: internal/metrics/collector.go
package metrics

import (
	"net/http"
	"time"

	"github.com/dkoosis/voicestyle/internal/mcperrors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Surface labels.
const (
	SurfaceRegistry = "registry"
	SurfaceDispatch = "dispatch"
	SurfaceHTTP     = "http"
)

// Outcome labels.
const (
	OutcomeOK           = "ok"
	OutcomeNotFound     = "not_found"
	OutcomeInvalidInput = "invalid_input"
	OutcomeError        = "error"
)

// Collector owns a private registry so tests and multiple servers never collide.
type Collector struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	sessions *prometheus.GaugeVec
	started  prometheus.Gauge
}

// NewCollector registers the server metrics plus the Go runtime and process collectors.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voicestyle",
			Name:      "requests_total",
			Help:      "Requests handled, by surface, operation and outcome.",
		}, []string{"surface", "operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "voicestyle",
			Name:      "request_duration_seconds",
			Help:      "Time spent answering a request.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}, []string{"surface", "operation"}),
		sessions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "voicestyle",
			Name:      "sessions_active",
			Help:      "Open protocol sessions per surface.",
		}, []string{"surface"}),
		started: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voicestyle",
			Name:      "start_time_seconds",
			Help:      "Unix time the process started serving.",
		}),
	}
	c.registry.MustRegister(
		c.requests, c.latency, c.sessions, c.started,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.started.SetToCurrentTime()
	return c
}

// Outcome classifies err for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case mcperrors.IsNotFound(err):
		return OutcomeNotFound
	case mcperrors.IsInvalidInput(err):
		return OutcomeInvalidInput
	default:
		return OutcomeError
	}
}

// RecordRequest counts one request. A nil Collector records nothing.
func (c *Collector) RecordRequest(surface, operation string, start time.Time, err error) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(surface, operation, Outcome(err)).Inc()
	c.latency.WithLabelValues(surface, operation).Observe(time.Since(start).Seconds())
}

// RecordSession tracks a session opening (active) or closing.
func (c *Collector) RecordSession(surface string, active bool) {
	if c == nil {
		return
	}
	g := c.sessions.WithLabelValues(surface)
	if active {
		g.Inc()
	} else {
		g.Dec()
	}
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
