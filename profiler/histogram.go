/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package profiler

import (
	"strings"
	"sync"
)

// numHistogramBuckets is the fixed bucket count of a task-type histogram
//").
const numHistogramBuckets = 20

// histogram is a thread-safe, fixed-width duration histogram. Updates are
// rare per call site relative to the fast path that feeds it, so a single
// mutex per histogram is acceptable.
type histogram struct {
	mu      sync.Mutex
	buckets [numHistogramBuckets]uint64
	// overflow counts samples whose floor(durationMillis) is >=
	// numHistogramBuckets; they still count toward the sample but don't
	// land in a named bucket.
	overflow uint64
	count    uint64
	sum      uint64
}

// HistogramSnapshot is the immutable view returned by snapshot(). It is
// only meaningful while the profiler is active.
type HistogramSnapshot struct {
	Buckets  [numHistogramBuckets]uint64
	Overflow uint64
	Count    uint64
	Sum      uint64
}

func (h *histogram) add(durationMillis int64) {
	if durationMillis < 0 {
		durationMillis = 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += uint64(durationMillis)
	if durationMillis < numHistogramBuckets {
		h.buckets[durationMillis]++
	} else {
		h.overflow++
	}
}

func (h *histogram) snapshot() HistogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return HistogramSnapshot{
		Buckets:  h.buckets,
		Overflow: h.overflow,
		Count:    h.count,
		Sum:      h.sum,
	}
}

// vfsPredicate selects a VFS sub-recorder by description (e.g. path suffix
// or prefix). It is evaluated in order; the first match wins.
type vfsPredicate struct {
	name      string
	match     func(description string) bool
	recorder  *histogram
}

// vfsCascade is an ordered list of (predicate, subRecorder) pairs that
// VFS-family task types fan out to, keyed on description (typically a
// file path).
type vfsCascade struct {
	fallback *histogram
	rules    []*vfsPredicate
}

func newVFSCascade() *vfsCascade {
	return &vfsCascade{
		fallback: &histogram{},
		rules: []*vfsPredicate{
			{name: "source", match: func(d string) bool { return hasAnySuffix(d, ".go", ".c", ".cc", ".cpp", ".java", ".py", ".rs") }, recorder: &histogram{}},
			{name: "generated", match: func(d string) bool { return strings.Contains(d, "/bazel-out/") || strings.Contains(d, "/genfiles/") }, recorder: &histogram{}},
			{name: "metadata", match: func(d string) bool { return hasAnySuffix(d, ".json", ".pb", ".proto") }, recorder: &histogram{}},
		},
	}
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func (c *vfsCascade) add(durationMillis int64, description string) {
	for _, r := range c.rules {
		if r.match(description) {
			r.recorder.add(durationMillis)
			return
		}
	}
	c.fallback.add(durationMillis)
}

// VFSCascadeSnapshot names each sub-recorder's snapshot by the predicate
// that feeds it, plus the catch-all fallback.
type VFSCascadeSnapshot struct {
	Named    map[string]HistogramSnapshot
	Fallback HistogramSnapshot
}

func (c *vfsCascade) snapshot() VFSCascadeSnapshot {
	named := make(map[string]HistogramSnapshot, len(c.rules))
	for _, r := range c.rules {
		named[r.name] = r.recorder.snapshot()
	}
	return VFSCascadeSnapshot{Named: named, Fallback: c.fallback.snapshot()}
}

// histogramSet owns one histogram or vfsCascade per TaskType and is the
// unit held by the facade.
type histogramSet struct {
	plain [numTaskTypes]*histogram
	vfs   [numTaskTypes]*vfsCascade
}

func newHistogramSet() *histogramSet {
	hs := &histogramSet{}
	for t := TaskType(0); t < numTaskTypes; t++ {
		if t.IsVFS() {
			hs.vfs[t] = newVFSCascade()
		} else {
			hs.plain[t] = &histogram{}
		}
	}
	return hs
}

func (hs *histogramSet) add(t TaskType, durationMillis int64, description string) {
	if !t.valid() {
		return
	}
	if t.IsVFS() {
		hs.vfs[t].add(durationMillis, description)
		return
	}
	hs.plain[t].add(durationMillis)
}

// TaskHistograms is the full snapshot returned by getTasksHistograms().
type TaskHistograms struct {
	Plain map[TaskType]HistogramSnapshot
	VFS   map[TaskType]VFSCascadeSnapshot
}

func (hs *histogramSet) snapshot() TaskHistograms {
	out := TaskHistograms{
		Plain: make(map[TaskType]HistogramSnapshot),
		VFS:   make(map[TaskType]VFSCascadeSnapshot),
	}
	for t := TaskType(0); t < numTaskTypes; t++ {
		if t.IsVFS() {
			out.VFS[t] = hs.vfs[t].snapshot()
		} else {
			out.Plain[t] = hs.plain[t].snapshot()
		}
	}
	return out
}
