/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package profiler

import (
	"container/heap"
	"fmt"
	"sync"
	"sync/atomic"
)

// firstLaneID is the starting point for synthetic lane ids, chosen well
// above any plausible OS thread id so lanes and real threads never collide
// on the same track.
const firstLaneID = 1_000_000

// syntheticSortIndex is the ThreadMetadata sort index given to every
// synthetic lane, placing them below real-thread tracks in a visualizer.
const syntheticSortIndex = 1_000_000

// freeList is a min-heap of released lane ids so acquire() always returns
// the smallest previously-freed id first.
type freeList []uint64

func (f freeList) Len() int            { return len(f) }
func (f freeList) Less(i, j int) bool  { return f[i] < f[j] }
func (f freeList) Swap(i, j int)       { f[i], f[j] = f[j], f[i] }
func (f *freeList) Push(x any)         { *f = append(*f, x.(uint64)) }
func (f *freeList) Pop() any {
	old := *f
	n := len(old)
	v := old[n-1]
	*f = old[:n-1]
	return v
}

// TaskTypeFormat is an opaque key carrying a printf-style lane-name
// template, one per task type that can be profiled asynchronously.
type TaskTypeFormat struct {
	Type     TaskType
	Template string // e.g. "async-action-%d"
}

type laneState struct {
	mu       sync.Mutex
	free     freeList
	nextSeq  uint64 // per-type naming counter, independent of the global id space
}

// laneAllocator mints lane ids from a global counter shared across all types (so lane
// ids stay disjoint from OS thread ids) plus a per-type free list of
// released ids.
type laneAllocator struct {
	nextLaneID atomic.Uint64 // next id to mint, starts at firstLaneID

	mu     sync.Mutex
	states map[TaskType]*laneState
}

func newLaneAllocator() *laneAllocator {
	la := &laneAllocator{states: make(map[TaskType]*laneState)}
	la.nextLaneID.Store(firstLaneID)
	return la
}

func (la *laneAllocator) stateFor(t TaskType) *laneState {
	la.mu.Lock()
	defer la.mu.Unlock()
	s, ok := la.states[t]
	if !ok {
		s = &laneState{}
		la.states[t] = s
	}
	return s
}

// acquire returns a lane id for an async task of the given format, minting
// a fresh id only when the type's free list is empty, and the
// ThreadMetadata record to emit for a newly-minted lane (nil when reusing a
// released id -- it was already emitted once).
func (la *laneAllocator) acquire(format TaskTypeFormat) (uint64, *ThreadMetadata) {
	s := la.stateFor(format.Type)
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.free) > 0 {
		id := heap.Pop(&s.free).(uint64)
		return id, nil
	}
	id := la.nextLaneID.Add(1) - 1
	seq := s.nextSeq
	s.nextSeq++
	meta := &ThreadMetadata{
		LaneID:      id,
		DisplayName: fmt.Sprintf(format.Template, seq),
		SortIndex:   syntheticSortIndex,
	}
	return id, meta
}

// release returns a lane id to the type's free list. Callers must release
// exactly once; no reference counting is performed.
func (la *laneAllocator) release(t TaskType, laneID uint64) {
	s := la.stateFor(t)
	s.mu.Lock()
	defer s.mu.Unlock()
	heap.Push(&s.free, laneID)
}
