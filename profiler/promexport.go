/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package profiler

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// promExporter mirrors the self-metrics registration pattern used for the
// runner's own Prometheus counters: a private registry (not the global
// default) so embedding a profiler in a larger process never collides with
// that process's own metric names.
type promExporter struct {
	once sync.Once

	registry *prometheus.Registry
	dropped  prometheus.Counter
	enqueued prometheus.Counter
	active   prometheus.Gauge
}

var promExp = &promExporter{}

func (e *promExporter) init() {
	e.once.Do(func() {
		e.registry = prometheus.NewRegistry()
		e.dropped = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "buildtrace",
			Subsystem: "profiler",
			Name:      "events_dropped_total",
			Help:      "Events dropped by the writer under backpressure.",
		})
		e.enqueued = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "buildtrace",
			Subsystem: "profiler",
			Name:      "events_enqueued_total",
			Help:      "Events successfully enqueued to the writer.",
		})
		e.active = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "buildtrace",
			Subsystem: "profiler",
			Name:      "active",
			Help:      "1 if the profiler is currently active, else 0.",
		})
		e.registry.MustRegister(e.dropped, e.enqueued, e.active)
	})
}

// PromHandler returns an http.Handler exposing the profiler's own
// operational metrics (not the trace data itself) in Prometheus exposition
// format.
func PromHandler() http.Handler {
	promExp.init()
	return promhttp.InstrumentMetricHandler(
		promExp.registry,
		promhttp.HandlerFor(promExp.registry, promhttp.HandlerOpts{}),
	)
}

func reportEnqueued() {
	promExp.init()
	promExp.enqueued.Inc()
}

func reportDropped(n float64) {
	promExp.init()
	promExp.dropped.Add(n)
}

func reportActive(isActive bool) {
	promExp.init()
	if isActive {
		promExp.active.Set(1)
	} else {
		promExp.active.Set(0)
	}
}
