/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package sampler

// Estimator is the resource-pressure collaborator a probe wraps. Defined
// here rather than accepted as a bare func so the profiler package's
// ResourceEstimator interface (same method, same Sample type) satisfies it
// structurally without this package importing back.
type Estimator interface {
	Estimate() (Sample, bool)
}

// WorkerMetricsCollector is the worker-process-pool collaborator a probe
// wraps, satisfied structurally by the profiler package's
// WorkerProcessMetricsCollector.
type WorkerMetricsCollector interface {
	CollectWorkerMetrics() (Sample, bool)
}

type estimatorProbe struct{ e Estimator }

func (p estimatorProbe) Name() string          { return ResourceEstim }
func (p estimatorProbe) Read() (Sample, bool)  { return p.e.Estimate() }

type workerMetricsProbe struct{ c WorkerMetricsCollector }

func (p workerMetricsProbe) Name() string         { return WorkerMetrics }
func (p workerMetricsProbe) Read() (Sample, bool) { return p.c.CollectWorkerMetrics() }

// RegisterResourceEstimator wraps e in a probe and registers it under
// ResourceEstim, unlike the OS-counter probes in this package it is not
// self-registered via init() since it depends on a collaborator supplied
// at start() time rather than on ambient OS state.
func RegisterResourceEstimator(e Estimator) {
	if e == nil {
		return
	}
	Register(estimatorProbe{e})
}

// RegisterWorkerMetricsCollector wraps c in a probe and registers it under
// WorkerMetrics, for the same start()-time-injection reason as
// RegisterResourceEstimator.
func RegisterWorkerMetricsCollector(c WorkerMetricsCollector) {
	if c == nil {
		return
	}
	Register(workerMetricsProbe{c})
}
