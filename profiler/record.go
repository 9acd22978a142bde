/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package profiler

import (
	"time"
	"unsafe"

	"github.com/corebuild/buildtrace/internal/debug"
)

// pseudoThreadID approximates an OS thread id for default lane assignment
// and top-K shard selection. Go does not expose a stable thread id to user
// code, so a stack address is used as a cheap per-call-site discriminant;
// it is not a real thread id. The address is 8-byte aligned, so taken mod
// numShards it selects only shard 0 or shard 8 of the top-K aggregator.
func pseudoThreadID() uint64 {
	var x int
	return uint64(uintptr(unsafe.Pointer(&x)))
}

func clampDuration(start, end int64) int64 {
	d := end - start
	if d < 0 {
		return 0
	}
	return d
}

// LogSimpleTask records an already-completed task spanning [start, end) on
// the calling goroutine's default lane.
func (p *Profiler) LogSimpleTask(start, end int64, t TaskType, desc string) {
	debug.Assert(desc != "", "empty description")
	p.logCompleted(start, clampDuration(start, end), t, desc, nil)
}

// LogSimpleTaskNow is LogSimpleTask with the end timestamp taken as the
// current clock reading, for a task whose completion is being recorded
// at the moment it finishes rather than after the fact.
func (p *Profiler) LogSimpleTaskNow(start int64, t TaskType, desc string) {
	if !p.IsProfiling(t) {
		return
	}
	p.LogSimpleTask(start, p.clock.NanoTime(), t, desc)
}

// LogSimpleTaskDuration is LogSimpleTask with an explicit duration instead
// of an end timestamp.
func (p *Profiler) LogSimpleTaskDuration(start int64, durationNanos int64, t TaskType, desc string) {
	debug.Assert(desc != "", "empty description")
	if durationNanos < 0 {
		durationNanos = 0
	}
	p.logCompleted(start, durationNanos, t, desc, nil)
}

// LogEventAtTime records an instantaneous event.
func (p *Profiler) LogEventAtTime(atNanos int64, t TaskType, desc string) {
	debug.Assert(desc != "", "empty description")
	p.logCompleted(atNanos, 0, t, desc, nil)
}

// Profile starts a region of the given type and description, returning a
// handle whose Release completes it. Returns the no-op handle when
// inactive or the type is filtered.
func (p *Profiler) Profile(t TaskType, desc string) *Handle {
	if !p.IsProfiling(t) {
		return &Handle{}
	}
	debug.Assert(desc != "", "empty description")
	return &Handle{p: p, typ: t, desc: desc, start: p.clock.NanoTime()}
}

// ProfileLazy is Profile with a deferred description supplier. The
// supplier is not invoked when the profiler is inactive or the type is
// filtered.
func (p *Profiler) ProfileLazy(t TaskType, descFn func() string) *Handle {
	if !p.IsProfiling(t) {
		return &Handle{}
	}
	desc := descFn()
	debug.Assert(desc != "", "empty description")
	return &Handle{p: p, typ: t, desc: desc, start: p.clock.NanoTime()}
}

// ProfileAction is Profile for build actions: on release it produces an
// ActionTaskData carrying mnemonic/output/label, subject to the
// include flags captured at Start.
func (p *Profiler) ProfileAction(t TaskType, mnemonic, desc, primaryOutput, targetLabel string) *Handle {
	if !p.IsProfiling(t) {
		return &Handle{}
	}
	debug.Assert(desc != "", "empty description")
	return &Handle{
		p: p, typ: t, desc: desc, start: p.clock.NanoTime(),
		action: &ActionTaskData{Mnemonic: mnemonic, PrimaryOutputPath: primaryOutput, TargetLabel: targetLabel},
	}
}

// ScopedProfiler is handed to a profileAsync future builder; it carries the
// synthetic lane the async task was assigned so any nested profile calls
// made from within the future can report on the right lane.
type ScopedProfiler struct {
	p      *Profiler
	laneID uint64
}

// LaneID returns the synthetic lane assigned to this async task.
func (sp *ScopedProfiler) LaneID() uint64 { return sp.laneID }

// Profile behaves like Profiler.Profile but assigns the region to this
// scope's lane instead of the calling goroutine's pseudo thread id.
func (sp *ScopedProfiler) Profile(t TaskType, desc string) *Handle {
	h := sp.p.Profile(t, desc)
	if h.p != nil {
		h.laneID = sp.laneID
		h.hasLane = true
	}
	return h
}

// Future is the result of ProfileAsync: a handle on a value produced on
// another goroutine, observable via Get.
type Future[T any] struct {
	ch chan asyncResult[T]
}

type asyncResult[T any] struct {
	val T
	err error
}

// Get blocks until the future completes.
func (f *Future[T]) Get() (T, error) {
	r := <-f.ch
	return r.val, r.err
}

// ProfileAsync allocates a lane via the lane allocator, runs futureBuilder
// on a new goroutine with a ScopedProfiler bound to that lane, and on
// completion records a task for the whole async span and releases the
// lane. If the profiler is inactive, futureBuilder still runs
// but against an inert ScopedProfiler whose Profile calls are no-ops.
func ProfileAsync[T any](p *Profiler, t TaskType, desc string, futureBuilder func(*ScopedProfiler) (T, error)) *Future[T] {
	fut := &Future[T]{ch: make(chan asyncResult[T], 1)}

	if !p.IsProfiling(t) {
		go func() {
			val, err := futureBuilder(&ScopedProfiler{p: p})
			fut.ch <- asyncResult[T]{val, err}
		}()
		return fut
	}

	format := TaskTypeFormat{Type: t, Template: t.Description() + "-async-%d"}
	laneID, meta := p.lanes.acquire(format)
	if meta != nil {
		if w := p.writerRef.Load(); w != nil {
			w.enqueueEvent(threadMetadataToEvent(*meta))
		}
	}

	start := p.clock.NanoTime()
	go func() {
		val, err := futureBuilder(&ScopedProfiler{p: p, laneID: laneID})
		end := p.clock.NanoTime()
		p.logCompletedOnLane(start, clampDuration(start, end), t, desc, laneID)
		p.lanes.release(t, laneID)
		fut.ch <- asyncResult[T]{val, err}
	}()
	return fut
}

// MarkPhase emits a PHASE event and signals the injected memory profiler of
// a phase boundary.
func (p *Profiler) MarkPhase(phase string) {
	if p.IsProfiling(PHASE) {
		p.logCompleted(p.clock.NanoTime(), 0, PHASE, phase, nil)
	}
	if p.memoryProfiler != nil {
		p.memoryProfiler.MarkPhase(phase)
	}
}

// GetSlowestTasks concatenates the top-K lists across all opted-in types.
// Valid only while active.
func (p *Profiler) GetSlowestTasks() []SlowTask {
	if !p.IsActive() {
		return nil
	}
	return p.slowest.merge()
}

// GetTasksHistograms snapshots every histogram while active; empty
// otherwise.
func (p *Profiler) GetTasksHistograms() TaskHistograms {
	if !p.IsActive() {
		return TaskHistograms{}
	}
	return p.histograms.snapshot()
}

// LogCounters enqueues an arbitrary pre-built counter series to the writer,
// for collaborators that compute their own time series outside the
// standard ACTION/ACTION_CHECK bookkeeping. profileStartOffset (in
// nanoseconds, relative to the profile's own start) and bucketDur let the
// caller use whatever alignment and bucket width its own series was
// computed with, rather than being forced onto the module's 200ms
// buckets.
func (p *Profiler) LogCounters(counters DensifiedCounters, profileStartOffset int64, bucketDur time.Duration) {
	w := p.writerRef.Load()
	if w == nil {
		return
	}
	w.enqueueEvents(counterSeriesToEvents(counters, profileStartOffset, bucketDur))
}

func (p *Profiler) logCompleted(start, duration int64, t TaskType, desc string, action *ActionTaskData) {
	p.logCompletedOnLane(start, duration, t, desc, pseudoThreadID())
}

func (p *Profiler) logCompletedOnLane(start, duration int64, t TaskType, desc string, laneID uint64) {
	if !p.IsProfiling(t) {
		return
	}
	td := TaskData{LaneID: laneID, StartNanos: start, DurationNanos: duration, Type: t, Description: desc}
	p.recordTask(td)
}

// completeTask is invoked by Handle.Release; it is a no-op if the profiler
// went inactive between acquisition and release.
func (p *Profiler) completeTask(h *Handle) {
	if !p.IsActive() {
		return
	}
	end := p.clock.NanoTime()
	laneID := pseudoThreadID()
	if h.hasLane {
		laneID = h.laneID
	}
	td := TaskData{
		LaneID: laneID, StartNanos: h.start, DurationNanos: clampDuration(h.start, end),
		Type: h.typ, Description: h.desc, Action: h.action,
	}
	p.recordTask(td)
}

// recordTask applies the min-duration filter, feeds the histogram and
// top-K aggregators, updates the two counter series under the facade
// monitor, and enqueues the resulting trace event.
func (p *Profiler) recordTask(td TaskData) {
	durationMillis := td.DurationNanos / 1_000_000

	if p.cfg.CollectTaskHistograms {
		p.histograms.add(td.Type, durationMillis, td.Description)
	}

	belowThreshold := !p.cfg.RecordAllDurations && td.DurationNanos < td.Type.MinDuration().Nanoseconds()
	if belowThreshold {
		return
	}

	p.slowest.add(td.LaneID, td)

	p.mu.Lock()
	p.counters.record(p.startNanos.Load(), td)
	p.mu.Unlock()

	includeOutput, includeLabel := p.cfg.IncludePrimaryOutput, p.cfg.IncludeTargetLabel
	if p.cfg.SlimProfile {
		includeOutput, includeLabel = false, false
		if td.DurationNanos < slimMicroThreshold.Nanoseconds() && p.slim.shouldSuppress(td.LaneID, td.Type, td.Description) {
			return
		}
	}

	w := p.writerRef.Load()
	if w == nil {
		return
	}
	ev := taskDataToEvent(p.startNanos.Load(), td, includeOutput, includeLabel)
	w.enqueueEvent(ev)
}
