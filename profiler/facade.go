/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package profiler

import (
	"errors"
	"sync"
	"syscall"
	"time"

	"github.com/corebuild/buildtrace/internal/mono"
	"github.com/corebuild/buildtrace/internal/nlog"
	"github.com/corebuild/buildtrace/internal/ratomic"
	"github.com/corebuild/buildtrace/profiler/sampler"
)

// ErrAlreadyActive is returned by Start when the profiler is already
// running.
var ErrAlreadyActive = errors.New("profiler: already active")

// logFlushInterval is the housekeeping tick nlog.Flush runs on while the
// profiler is active, matching nlog's own buffered-not-per-call design.
const logFlushInterval = 2 * time.Second

// Profiler is the process-wide profiling facade. A single package-level
// instance backs the singleton; all operations are safe to call while
// inactive. Grounded on the atomic active/inactive state machine of
// transport/base.go's streamBase, generalized from one stream to the
// whole recorder.
type Profiler struct {
	mu sync.Mutex // the facade monitor; guards start/stop and counter-series updates

	active    atomic_bool
	clock     Clock
	startNanos atomic_int64 // 0 iff inactive
	cpuStartSeconds float64

	enabledTypes [numTaskTypes]bool // immutable snapshot taken at start
	cfg          Config

	writerRef ratomic.Ptr[eventWriter]

	histograms *histogramSet
	slowest    *slowestSet
	counters   *counterSet
	lanes      *laneAllocator

	samplerRunner *sampler.Runner

	flushStop chan struct{}
	flushWG   sync.WaitGroup

	slim *slimFilter

	bugReporter    BugReporter
	memoryProfiler MemoryProfiler
}

// atomic_bool and atomic_int64 are local type aliases of internal/ratomic's
// Bool and Int64; the facade stores these fields under mu and reads them
// lock-free on the fast path; see IsActive/NanoTimeMaybe.
type atomic_bool = ratomic.Bool
type atomic_int64 = ratomic.Int64

var instance = &Profiler{}

// Instance returns the process-wide singleton.
func Instance() *Profiler { return instance }

// IsActive is an O(1) predicate safe to call from any goroutine without
// locking.
func (p *Profiler) IsActive() bool { return p.active.Load() }

// IsProfiling reports whether t is both a valid type and was included in
// the enabledTypes set passed to Start.
func (p *Profiler) IsProfiling(t TaskType) bool {
	if !p.IsActive() || !t.valid() {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabledTypes[t]
}

// Start transitions the profiler to active. It fails if already active.
func (p *Profiler) Start(cfg Config) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active.Load() {
		return ErrAlreadyActive
	}

	if cfg.Clock == nil {
		cfg.Clock = mono.Real{}
	}
	if cfg.BugReporter == nil {
		cfg.BugReporter = nopBugReporter{}
	}
	if cfg.MemoryProfiler == nil {
		cfg.MemoryProfiler = nopMemoryProfiler{}
	}

	start := cfg.StartNanos
	if start == 0 {
		start = cfg.Clock.NanoTime()
	}

	p.clock = cfg.Clock
	p.cfg = cfg
	p.bugReporter = cfg.BugReporter
	p.memoryProfiler = cfg.MemoryProfiler
	p.cpuStartSeconds = processCPUSeconds()

	var enabled [numTaskTypes]bool
	if len(cfg.EnabledTypes) == 0 {
		for t := TaskType(0); t < numTaskTypes; t++ {
			enabled[t] = true
		}
	} else {
		for _, t := range cfg.EnabledTypes {
			if t.valid() {
				enabled[t] = true
			}
		}
	}
	p.enabledTypes = enabled

	p.histograms = newHistogramSet()
	p.slowest = newSlowestSet()
	p.counters = newCounterSet()
	p.lanes = newLaneAllocator()
	if p.slim == nil {
		p.slim = newSlimFilter()
	} else {
		p.slim.reset()
	}

	w := newEventWriter(cfg.Sink)
	p.writerRef.Store(w)

	if cfg.ResourceEstimator != nil {
		sampler.RegisterResourceEstimator(cfg.ResourceEstimator)
	}
	if cfg.WorkerMetrics != nil {
		sampler.RegisterWorkerMetricsCollector(cfg.WorkerMetrics)
	}

	p.samplerRunner = sampler.NewRunner(cfg.enabledProbeNames(), p.emitSample, func() int64 { return p.clock.NanoTime() })
	p.samplerRunner.Start()

	p.flushStop = make(chan struct{})
	p.flushWG.Add(1)
	go p.runLogFlusher(p.flushStop)

	p.startNanos.Store(start)
	p.active.Store(true)
	reportActive(true)
	return nil
}

// runLogFlusher ticks nlog.Flush on logFlushInterval so diagnostic log lines
// (backpressure drops, sampler panics, sink failures) reach stderr well
// before process exit instead of sitting in nlog's internal buffer.
func (p *Profiler) runLogFlusher(stop chan struct{}) {
	defer p.flushWG.Done()
	ticker := time.NewTicker(logFlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			nlog.Flush(nlog.ActNone)
		case <-stop:
			return
		}
	}
}

// emitSample turns one probe reading into a counter-series entry routed
// through the writer.
func (p *Profiler) emitSample(probeName string, s sampler.Sample, atNanos int64) {
	w := p.writerRef.Load()
	if w == nil {
		return
	}
	args := make(map[string]any, len(s))
	for k, v := range s {
		args[k] = v
	}
	w.enqueueEvent(chromeEvent{
		Ph:   "C",
		Name: probeName,
		TS:   nanosToMicros(atNanos - p.startNanos.Load()),
		PID:  1,
		Args: args,
	})
}

// Stop drains time-series into the writer, joins the sampler and writer,
// and transitions to inactive. Idempotent: a second call is a no-op. The
// histogram, top-K, counter and lane state is not reset here; it stays in
// place until the next Start replaces it with fresh instances.
func (p *Profiler) Stop() {
	p.mu.Lock()
	if !p.active.Load() {
		p.mu.Unlock()
		return
	}
	start := p.startNanos.Load()
	end := p.clock.NanoTime()
	w := p.writerRef.Load()

	densified := p.counters.densify(start, end)
	if w != nil {
		w.enqueueEvents(counterSeriesToEvents(densified, 0, bucketDuration))
	}
	p.mu.Unlock()

	if p.samplerRunner != nil {
		p.samplerRunner.Stop()
	}

	if p.flushStop != nil {
		close(p.flushStop)
		p.flushWG.Wait()
		p.flushStop = nil
	}

	if w != nil {
		w.enqueueEvent(chromeEvent{
			Ph: "i", Cat: INFO.Description(), Name: "Finishing",
			TS: nanosToMicros(p.clock.NanoTime() - start), PID: 1,
		})
	}

	p.writerRef.Store(nil)
	if w != nil {
		if err := w.shutdown(); err != nil {
			p.bugReporter.ReportBug(err)
		}
	}
	nlog.Flush(nlog.ActNone)

	p.mu.Lock()
	p.startNanos.Store(0)
	p.active.Store(false)
	p.mu.Unlock()
	reportActive(false)
}

// NanoTimeMaybe returns the current clock reading if active, else -1.
func (p *Profiler) NanoTimeMaybe() int64 {
	if !p.IsActive() {
		return -1
	}
	return p.clock.NanoTime()
}

// ElapsedTimeMaybe returns the duration since start if active.
func (p *Profiler) ElapsedTimeMaybe() (time.Duration, bool) {
	if !p.IsActive() {
		return 0, false
	}
	return time.Duration(p.clock.NanoTime() - p.startNanos.Load()), true
}

// ProcessCPUTimeMaybe returns process CPU time consumed since Start, if
// active.
func (p *Profiler) ProcessCPUTimeMaybe() (time.Duration, bool) {
	if !p.IsActive() {
		return 0, false
	}
	delta := processCPUSeconds() - p.cpuStartSeconds
	if delta < 0 {
		delta = 0
	}
	return time.Duration(delta * float64(time.Second)), true
}

func processCPUSeconds() float64 {
	var ru syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	return float64(ru.Utime.Sec) + float64(ru.Utime.Usec)/1e6 + float64(ru.Stime.Sec) + float64(ru.Stime.Usec)/1e6
}
