// Package metrics exposes Prometheus collectors for travel estimation,
// scheduling runs, the routing circuit breaker and the HTTP API. Every
// Metrics value owns a dedicated registry so tests and binaries never share
// global state.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fieldservice/internal/core/domain/model/scheduling"
	"fieldservice/internal/core/domain/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fieldservice"

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeTimeout  = "timeout"
	OutcomeError    = "error"
	OutcomeAssigned = "assigned"
)

var breakerStates = map[string]float64{
	"closed":    0,
	"half-open": 1,
	"open":      2,
}

// Metrics owns a private Prometheus registry with the travel, scheduling,
// breaker and HTTP collectors. It implements every observer interface of the
// scheduling and routing packages.
type Metrics struct {
	registry *prometheus.Registry

	travelEstimates  *prometheus.CounterVec
	travelDuration   *prometheus.HistogramVec
	schedulingResult *prometheus.CounterVec
	schedulingRun    *prometheus.HistogramVec
	breakerState     *prometheus.GaugeVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

var _ services.EstimateObserver = (*Metrics)(nil)

// New registers all collectors, plus the Go and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		travelEstimates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "travel_estimates_total",
				Help:      "Travel estimates by source and provider outcome.",
			},
			[]string{"source", "outcome"},
		),
		travelDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "travel_estimate_duration_seconds",
				Help:      "Time spent producing a travel estimate.",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
			},
			[]string{"source"},
		),
		schedulingResult: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scheduling_results_total",
				Help:      "Scheduling results by mode and outcome.",
			},
			[]string{"mode", "outcome"},
		),
		schedulingRun: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scheduling_run_duration_seconds",
				Help:      "Duration of scheduling runs.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		breakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "routing_breaker_state",
				Help:      "Routing circuit breaker state (0 closed, 1 half-open, 2 open).",
			},
			[]string{"breaker"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}

	m.registry.MustRegister(
		m.travelEstimates,
		m.travelDuration,
		m.schedulingResult,
		m.schedulingRun,
		m.breakerState,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveEstimate implements services.EstimateObserver.
func (m *Metrics) ObserveEstimate(source services.TravelSource, err error, elapsed time.Duration) {
	m.travelEstimates.WithLabelValues(string(source), outcomeOf(err)).Inc()
	m.travelDuration.WithLabelValues(string(source)).Observe(elapsed.Seconds())
}

// ObserveResults records one scheduling run. mode is "single", "batch" or "pending".
func (m *Metrics) ObserveResults(mode string, results []scheduling.Result, elapsed time.Duration) {
	for _, r := range results {
		outcome := OutcomeAssigned
		if !r.IsFeasible() {
			outcome = r.Failure().String()
		}
		m.schedulingResult.WithLabelValues(mode, outcome).Inc()
	}
	m.schedulingRun.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// ObserveBreakerState records a circuit breaker transition. Unknown states are ignored.
func (m *Metrics) ObserveBreakerState(name string, state string) {
	if v, ok := breakerStates[state]; ok {
		m.breakerState.WithLabelValues(name).Set(v)
	}
}

// ObserveHTTP records one served request. path is the route template, not the raw URL.
func (m *Metrics) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(method, path, code).Inc()
	m.httpDuration.WithLabelValues(method, path, code).Observe(elapsed.Seconds())
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	default:
		return OutcomeError
	}
}
