/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package sampler

import (
	"sync"
	"time"

	"github.com/corebuild/buildtrace/internal/nlog"
)

// Interval is the fixed-ish tick period between samples.
const Interval = time.Second

// Emit is called once per sample, per enabled probe, on the sampler's own
// goroutine. The caller
// (the profiler facade) turns each Sample into a counter-series
// contribution routed through the event writer.
type Emit func(probeName string, s Sample, atNanos int64)

// Runner is a daemon goroutine that wakes on Interval, reads every
// enabled probe, and hands each non-empty reading to Emit. Grounded on the
// atomic active/inactive state machine and background worker loop of
// transport/base.go's streamBase, reduced here to a simple ticker since the
// sampler has no retry/backoff concerns.
type Runner struct {
	probes []Probe
	emit   Emit
	nowFn  func() int64

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewRunner constructs a sampler over the given enabled probe names. nowFn
// supplies the monotonic clock so sample timestamps share the same clock
// as every other recorded event.
func NewRunner(probeNames []string, emit Emit, nowFn func() int64) *Runner {
	return &Runner{
		probes: Enabled(probeNames...),
		emit:   emit,
		nowFn:  nowFn,
		stopCh: make(chan struct{}),
	}
}

// Start launches the background goroutine. It is a no-op if there are no
// enabled probes.
func (r *Runner) Start() {
	if len(r.probes) == 0 {
		return
	}
	r.wg.Add(1)
	go r.run()
}

func (r *Runner) run() {
	defer r.wg.Done()
	ticker := time.NewTicker(Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.sampleOnce()
		case <-r.stopCh:
			return
		}
	}
}

func (r *Runner) sampleOnce() {
	now := r.nowFn()
	for _, p := range r.probes {
		s, ok := p.Read()
		if !ok || len(s) == 0 {
			continue
		}
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					nlog.Warningln("sampler: probe", p.Name(), "panicked:", rec)
				}
			}()
			r.emit(p.Name(), s, now)
		}()
	}
}

// Stop signals termination and joins the goroutine.
func (r *Runner) Stop() {
	close(r.stopCh)
	r.wg.Wait()
}
