/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package profiler

import (
	"container/heap"
	"sync"
)

// numShards balances lock contention against merge cost; topK is the
// retained slowest count per type.
const (
	numShards = 16
	topK      = 30
)

// slowTaskHeap is a bounded min-heap of SlowTask ordered by DurationNanos
// ascending, so the root is always the smallest of the retained set --
// the one evicted when a larger sample arrives.
type slowTaskHeap []SlowTask

func (h slowTaskHeap) Len() int            { return len(h) }
func (h slowTaskHeap) Less(i, j int) bool  { return h[i].DurationNanos < h[j].DurationNanos }
func (h slowTaskHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *slowTaskHeap) Push(x any)         { *h = append(*h, x.(SlowTask)) }
func (h *slowTaskHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

type slowestShard struct {
	mu   sync.Mutex
	heap slowTaskHeap
}

func (s *slowestShard) add(t SlowTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.heap) < topK {
		heap.Push(&s.heap, t)
		return
	}
	if t.DurationNanos > s.heap[0].DurationNanos {
		s.heap[0] = t
		heap.Fix(&s.heap, 0)
	}
}

func (s *slowestShard) drain() []SlowTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SlowTask, len(s.heap))
	copy(out, s.heap)
	s.heap = s.heap[:0]
	return out
}

// slowestAggregator is the sharded top-K tracker for one task type:
// adding picks a shard by `threadId mod numShards` and locks
// only that shard; merging at stop iterates every shard's heap into a
// single max-K.
type slowestAggregator struct {
	shards [numShards]slowestShard
}

func newSlowestAggregator() *slowestAggregator {
	return &slowestAggregator{}
}

func (a *slowestAggregator) add(shardKey uint64, t SlowTask) {
	a.shards[shardKey%numShards].add(t)
}

// merge collects every shard's retained samples and reduces them to the
// global top-K, clearing shard state as it goes.
func (a *slowestAggregator) merge() []SlowTask {
	var all slowTaskHeap
	for i := range a.shards {
		all = append(all, a.shards[i].drain()...)
	}
	if len(all) <= topK {
		return []SlowTask(all)
	}
	heap.Init(&all)
	for all.Len() > topK {
		heap.Pop(&all)
	}
	return []SlowTask(all)
}

// slowestSet owns one aggregator per task type opting into top-K tracking.
type slowestSet struct {
	byType [numTaskTypes]*slowestAggregator
}

func newSlowestSet() *slowestSet {
	s := &slowestSet{}
	for t := TaskType(0); t < numTaskTypes; t++ {
		if t.CollectsSlowestInstances() {
			s.byType[t] = newSlowestAggregator()
		}
	}
	return s
}

func (s *slowestSet) add(shardKey uint64, td TaskData) {
	if !td.Type.valid() {
		return
	}
	agg := s.byType[td.Type]
	if agg == nil {
		return
	}
	agg.add(shardKey, SlowTask{DurationNanos: td.DurationNanos, Description: td.Description, Type: td.Type})
}

// merge concatenates the top-K lists across all opted-in types and clears
// the shards, so each call (Profiler.GetSlowestTasks) is a one-shot drain.
func (s *slowestSet) merge() []SlowTask {
	var out []SlowTask
	for t := TaskType(0); t < numTaskTypes; t++ {
		if s.byType[t] == nil {
			continue
		}
		out = append(out, s.byType[t].merge()...)
	}
	return out
}
