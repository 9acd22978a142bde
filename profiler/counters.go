/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package profiler

import (
	"sync"
	"time"
)

// bucketDuration is fixed at 200ms for every counter series.
const bucketDuration = 200 * time.Millisecond

// counterSeries is a sparse, append-only accumulator over time. Contributions
// arrive as half-open ranges [start, end); each is spread across the
// buckets it overlaps, weighted by the fraction of the range falling in
// that bucket.
type counterSeries struct {
	mu      sync.Mutex
	buckets map[int64]float64 // bucket index -> accumulated value
}

func newCounterSeries() *counterSeries {
	return &counterSeries{buckets: make(map[int64]float64)}
}

// add records a contribution from the half-open interval
// [startNanos, startNanos+durationNanos) relative to profileStart.
func (c *counterSeries) add(profileStart, startNanos, durationNanos int64) {
	if durationNanos <= 0 {
		// Instantaneous event: attribute the full unit to its single bucket.
		idx := bucketIndex(profileStart, startNanos)
		c.mu.Lock()
		c.buckets[idx]++
		c.mu.Unlock()
		return
	}
	end := startNanos + durationNanos
	bd := bucketDuration.Nanoseconds()
	startIdx := bucketIndex(profileStart, startNanos)
	endIdx := bucketIndex(profileStart, end-1)

	c.mu.Lock()
	defer c.mu.Unlock()
	for idx := startIdx; idx <= endIdx; idx++ {
		bucketStart := profileStart + idx*bd
		bucketEnd := bucketStart + bd
		lo := maxI64(startNanos, bucketStart)
		hi := minI64(end, bucketEnd)
		overlap := hi - lo
		if overlap <= 0 {
			continue
		}
		c.buckets[idx] += float64(overlap) / float64(durationNanos)
	}
}

func bucketIndex(profileStart, atNanos int64) int64 {
	d := atNanos - profileStart
	if d < 0 {
		d = 0
	}
	return d / bucketDuration.Nanoseconds()
}

func maxI64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minI64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// densify converts the sparse map into a dense array of length
// ceil((end-profileStart)/bucketDuration).
func (c *counterSeries) densify(profileStart, end int64) []float64 {
	span := end - profileStart
	if span < 0 {
		span = 0
	}
	bd := bucketDuration.Nanoseconds()
	n := (span + bd - 1) / bd
	out := make([]float64, n)
	c.mu.Lock()
	defer c.mu.Unlock()
	for idx, v := range c.buckets {
		if idx >= 0 && idx < n {
			out[idx] += v
		}
	}
	return out
}

// counterSet owns the two standard time series: action counts and
// action-cache counts.
type counterSet struct {
	actionCounts      *counterSeries
	actionCacheCounts *counterSeries
}

func newCounterSet() *counterSet {
	return &counterSet{
		actionCounts:      newCounterSeries(),
		actionCacheCounts: newCounterSeries(),
	}
}

// record applies the action-counting criterion: an ACTION event, or an
// INFO event whose description is exactly "discoverInputs", bumps the
// action-count series; an ACTION_CHECK event bumps the action-cache
// series. This coupling is historical and preserved verbatim.
func (cs *counterSet) record(profileStart int64, td TaskData) {
	switch {
	case td.Type == ACTION || (td.Type == INFO && td.Description == discoverInputsDesc):
		cs.actionCounts.add(profileStart, td.StartNanos, td.DurationNanos)
	case td.Type == ACTION_CHECK:
		cs.actionCacheCounts.add(profileStart, td.StartNanos, td.DurationNanos)
	}
}

// DensifiedCounters is the flushed counter-series map, keyed by the two
// *_COUNTS task types it covers.
type DensifiedCounters map[TaskType][]float64

func (cs *counterSet) densify(profileStart, end int64) DensifiedCounters {
	return DensifiedCounters{
		ACTION_COUNTS:       cs.actionCounts.densify(profileStart, end),
		ACTION_CACHE_COUNTS: cs.actionCacheCounts.densify(profileStart, end),
	}
}
