/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package profiler

import (
	"github.com/corebuild/buildtrace/profiler/sampler"
	"github.com/corebuild/buildtrace/profiler/sink"
)

// OutputFormat names plain vs gzip-wrapped trace framing. Start does not
// read Config.Format: the framing is whatever the sink passed in
// Config.Sink produces (sink.NewFile for plain, sink.NewGzipFile for gzip).
type OutputFormat int

const (
	JSONTraceFile OutputFormat = iota
	JSONTraceFileCompressedFormat
)

// Config bundles every start-up parameter into one struct, the same
// flattening stats.Trunner's config assembly does for its own
// many-flag startup path.
type Config struct {
	EnabledTypes []TaskType
	Sink         sink.Sink
	Format       OutputFormat
	OutputBase   string
	BuildID      string

	RecordAllDurations   bool
	SlimProfile          bool
	IncludePrimaryOutput bool
	IncludeTargetLabel   bool
	CollectTaskHistograms bool

	CollectWorkerData        bool
	CollectLoadAverage       bool
	CollectSystemNetwork     bool
	CollectPressureStall     bool
	CollectResourceEstimation bool

	Clock      Clock
	StartNanos int64 // 0 means "use Clock.NanoTime() at start()"

	ResourceEstimator   ResourceEstimator
	WorkerMetrics       WorkerProcessMetricsCollector
	BugReporter         BugReporter
	MemoryProfiler      MemoryProfiler
}

// Clock is an injected monotonic nanosecond source.
type Clock interface {
	NanoTime() int64
}

// enabledProbeNames translates the boolean collect* flags into the probe
// name list sampler.NewRunner consumes. CPU and disk I/O are always
// enabled when the sampler runs at all; the rest are opt-in.
func (c *Config) enabledProbeNames() []string {
	names := []string{sampler.CPU}
	if c.CollectLoadAverage {
		names = append(names, sampler.LoadAverage)
	}
	if c.CollectSystemNetwork {
		names = append(names, sampler.Network)
	}
	if c.CollectPressureStall {
		names = append(names, sampler.PressureStall)
	}
	if c.CollectWorkerData {
		names = append(names, sampler.WorkerMetrics)
	}
	if c.CollectResourceEstimation {
		names = append(names, sampler.ResourceEstim)
	}
	names = append(names, sampler.DiskIO)
	return names
}
