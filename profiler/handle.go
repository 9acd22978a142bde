/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package profiler

import "sync/atomic"

// Handle is a single-shot scoped region handle. Release is idempotent
// past the first call and safe to invoke from a defer on every exit path.
// The zero Handle is the no-op handle used when profiling is disabled or
// the type is filtered; its Release does nothing.
type Handle struct {
	p    *Profiler
	typ  TaskType
	desc string
	start int64

	laneID   uint64
	hasLane  bool
	laneFmt  TaskTypeFormat

	action *ActionTaskData

	released atomic.Bool
}

// Release completes the region: if the profiler transitioned to inactive
// between acquisition and release, or this handle was already released,
// Release is silently ignored beyond its own bookkeeping.
func (h *Handle) Release() {
	if h == nil || h.p == nil {
		return
	}
	if h.released.Swap(true) {
		return
	}
	h.p.completeTask(h)
}
