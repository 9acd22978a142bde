/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package profiler

import "github.com/corebuild/buildtrace/profiler/sampler"

// BugReporter receives I/O failures from the writer or sampler that the
// fast path must never propagate to an unrelated call site.
type BugReporter interface {
	ReportBug(err error)
}

// ResourceEstimator is an injected collaborator the sampler may consult for
// a derived resource-pressure estimate.
type ResourceEstimator interface {
	Estimate() (sampler.Sample, bool)
}

// WorkerProcessMetricsCollector is an injected collaborator the sampler may
// consult for metrics from a worker-process pool.
type WorkerProcessMetricsCollector interface {
	CollectWorkerMetrics() (sampler.Sample, bool)
}

// MemoryProfiler is signaled on phase boundaries.
type MemoryProfiler interface {
	MarkPhase(phase string)
}

// nopBugReporter discards every report; used when start() is not given one.
type nopBugReporter struct{}

func (nopBugReporter) ReportBug(error) {}

// nopMemoryProfiler ignores every phase mark.
type nopMemoryProfiler struct{}

func (nopMemoryProfiler) MarkPhase(string) {}
