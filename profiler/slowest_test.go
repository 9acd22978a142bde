/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package profiler

import (
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlowestAggregatorTopK(t *testing.T) {
	agg := newSlowestAggregator()
	var durations []int64
	for i := int64(0); i < 500; i++ {
		d := i * 1000
		durations = append(durations, d)
		agg.add(uint64(i), SlowTask{DurationNanos: d, Description: "x"})
	}
	got := agg.merge()
	require.Len(t, got, topK)

	sort.Sort(sort.Reverse(int64Slice(durations)))
	want := durations[:topK]

	var gotDur []int64
	for _, g := range got {
		gotDur = append(gotDur, g.DurationNanos)
	}
	sort.Sort(sort.Reverse(int64Slice(gotDur)))
	assert.Equal(t, want, gotDur)
}

type int64Slice []int64

func (s int64Slice) Len() int           { return len(s) }
func (s int64Slice) Less(i, j int) bool { return s[i] < s[j] }
func (s int64Slice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

func TestSlowestAggregatorConcurrent(t *testing.T) {
	agg := newSlowestAggregator()
	var wg sync.WaitGroup
	for worker := 0; worker < 2; worker++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(w)))
			for i := 0; i < 1000; i++ {
				d := int64(rng.Intn(10_000_000))
				agg.add(uint64(w*1000+i), SlowTask{DurationNanos: d, Description: "a"})
			}
		}(worker)
	}
	wg.Wait()
	got := agg.merge()
	assert.Len(t, got, topK)
}

func TestSlowestAggregatorMergeClears(t *testing.T) {
	agg := newSlowestAggregator()
	agg.add(0, SlowTask{DurationNanos: 5})
	first := agg.merge()
	require.Len(t, first, 1)
	second := agg.merge()
	assert.Empty(t, second)
}

func TestSlowestSetOnlyTracksOptedInTypes(t *testing.T) {
	s := newSlowestSet()
	s.add(0, TaskData{Type: ACTION, DurationNanos: 5, Description: "a"})
	s.add(0, TaskData{Type: ACTION_COUNTS, DurationNanos: 5, Description: "b"})
	got := s.merge()
	require.Len(t, got, 1)
	assert.Equal(t, ACTION, got[0].Type)
}
