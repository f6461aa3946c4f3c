package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	eventsAppended = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "botcore",
			Subsystem: "eventlog",
			Name:      "appended_total",
			Help:      "Number of events appended to the event log.",
		}, []string{"type"},
	)
	eventAppendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "botcore",
			Subsystem: "eventlog",
			Name:      "append_failures_total",
			Help:      "Number of event log writes that failed and were swallowed.",
		},
	)
	pluginIntercepts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "botcore",
			Subsystem: "plugin",
			Name:      "intercepts_total",
			Help:      "Number of messages intercepted, per plugin.",
		}, []string{"plugin"},
	)
	pluginFaults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "botcore",
			Subsystem: "plugin",
			Name:      "faults_total",
			Help:      "Number of plugin invocations that failed and were isolated.",
		}, []string{"plugin"},
	)
	healthChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "botcore",
			Subsystem: "health",
			Name:      "checks_total",
			Help:      "Number of health check probes, per service and resulting status.",
		}, []string{"service", "status"},
	)
	healthLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "botcore",
			Subsystem: "health",
			Name:      "check_duration_seconds",
			Help:      "Observed health check latency per service.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service"},
	)
	classifiedErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "botcore",
			Subsystem: "errors",
			Name:      "classified_total",
			Help:      "Number of errors classified, per error kind.",
		}, []string{"kind"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{eventsAppended, eventAppendFailures, pluginIntercepts, pluginFaults, healthChecks, healthLatency, classifiedErrors}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			// If already registered, ignore (allows double Register with default registry)
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler that serves Prometheus metrics for the DefaultGatherer.
// The caller is responsible for starting an HTTP server and wiring the route.
func Handler() http.Handler { return promhttp.Handler() }

// Below are lightweight helpers used by internal packages to record metrics.
// They no-op if Register hasn't been called.

func IncEventAppended(eventType string) {
	if regOK.Load() {
		eventsAppended.WithLabelValues(eventType).Inc()
	}
}

func IncEventAppendFailure() {
	if regOK.Load() {
		eventAppendFailures.Inc()
	}
}

func IncPluginIntercept(plugin string) {
	if regOK.Load() {
		pluginIntercepts.WithLabelValues(plugin).Inc()
	}
}

func IncPluginFault(plugin string) {
	if regOK.Load() {
		pluginFaults.WithLabelValues(plugin).Inc()
	}
}

func ObserveHealthCheck(service, status string, seconds float64) {
	if regOK.Load() {
		healthChecks.WithLabelValues(service, status).Inc()
		healthLatency.WithLabelValues(service).Observe(seconds)
	}
}

func IncClassifiedError(kind string) {
	if regOK.Load() {
		classifiedErrors.WithLabelValues(kind).Inc()
	}
}
