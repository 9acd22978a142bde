// Package sampler is the background resource sampler: a daemon goroutine
// that periodically reads OS/process counters through a small registry
// of probes and turns each reading into a counter-series contribution
// for the event writer.
//
// Probes self-register via init(), the same factory/registry idiom
// xaction/xrun/init.go uses to wire xaction kinds into the global registry
// without the registry package importing every implementation.
/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package sampler

import "sync"

// Sample is one probe's reading at a point in time: a flat set of named
// values (e.g. "cpu_user", "cpu_system" for the CPU probe) to be folded
// into the resource-sampler's synthetic counter events.
type Sample map[string]float64

// Probe reads one category of OS/process counters. Read may return
// ok=false when the underlying capability is unavailable on the current
// platform -- the series is then simply omitted for that tick, degrading
// gracefully instead of failing the whole sampler.
type Probe interface {
	Name() string
	Read() (Sample, bool)
}

var (
	registryMu sync.Mutex
	registry   = map[string]Probe{}
)

// Register adds a probe to the global registry under its name, overwriting
// any previous registration of the same name. Called from each probe's
// init().
func Register(p Probe) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[p.Name()] = p
}

// Enabled returns the subset of registered probes named in names, in the
// order of names, skipping names with no matching probe.
func Enabled(names ...string) []Probe {
	registryMu.Lock()
	defer registryMu.Unlock()
	out := make([]Probe, 0, len(names))
	for _, n := range names {
		if p, ok := registry[n]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Names known to Enabled; callers pass a subset depending on which
// collectXxx flags were set at start().
const (
	CPU            = "cpu"
	LoadAverage    = "load_average"
	Network        = "network"
	PressureStall  = "pressure_stall"
	DiskIO         = "disk_io"
	WorkerMetrics  = "worker_metrics"
	ResourceEstim  = "resource_estimation"
)
