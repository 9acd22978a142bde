/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterSeriesInstantaneous(t *testing.T) {
	cs := newCounterSeries()
	cs.add(0, 50*int64(time.Millisecond), 0)
	out := cs.densify(0, int64(bucketDuration))
	require.Len(t, out, 1)
	assert.Equal(t, 1.0, out[0])
}

func TestCounterSeriesSpansBucketsProportionally(t *testing.T) {
	cs := newCounterSeries()
	bd := bucketDuration.Nanoseconds()
	// Event spans exactly two buckets, half in each.
	cs.add(0, bd/2, bd)
	out := cs.densify(0, 2*bd)
	require.Len(t, out, 2)
	assert.InDelta(t, 0.5, out[0], 1e-9)
	assert.InDelta(t, 0.5, out[1], 1e-9)
}

func TestCounterSeriesDensifyLength(t *testing.T) {
	cs := newCounterSeries()
	bd := bucketDuration.Nanoseconds()
	out := cs.densify(0, bd*3+1)
	assert.Len(t, out, 4)
}

func TestCounterSetActionCriterion(t *testing.T) {
	cs := newCounterSet()
	cs.record(0, TaskData{Type: ACTION, StartNanos: 0, DurationNanos: int64(bucketDuration)})
	cs.record(0, TaskData{Type: INFO, Description: discoverInputsDesc, StartNanos: 0, DurationNanos: 0})
	cs.record(0, TaskData{Type: ACTION_CHECK, StartNanos: 0, DurationNanos: 0})
	cs.record(0, TaskData{Type: INFO, Description: "unrelated", StartNanos: 0, DurationNanos: 0})

	out := cs.densify(0, int64(bucketDuration))
	assert.InDelta(t, 2.0, out[ACTION_COUNTS][0], 1e-9)
	assert.InDelta(t, 1.0, out[ACTION_CACHE_COUNTS][0], 1e-9)
}
