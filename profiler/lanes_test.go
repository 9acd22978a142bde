/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package profiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaneAllocatorMintsAboveFirstLaneID(t *testing.T) {
	la := newLaneAllocator()
	format := TaskTypeFormat{Type: ACTION, Template: "async-%d"}
	id, meta := la.acquire(format)
	assert.GreaterOrEqual(t, id, uint64(firstLaneID))
	require.NotNil(t, meta)
	assert.Equal(t, "async-0", meta.DisplayName)
	assert.Equal(t, int64(syntheticSortIndex), meta.SortIndex)
}

func TestLaneAllocatorRecyclesSmallestFirst(t *testing.T) {
	la := newLaneAllocator()
	format := TaskTypeFormat{Type: ACTION, Template: "a-%d"}

	id1, _ := la.acquire(format)
	id2, _ := la.acquire(format)
	id3, _ := la.acquire(format)

	la.release(ACTION, id2)
	la.release(ACTION, id1)

	// Smallest released id must come back first.
	got, meta := la.acquire(format)
	assert.Equal(t, id1, got)
	assert.Nil(t, meta, "reused lane id must not re-emit ThreadMetadata")

	la.release(ACTION, id3)
	_ = id3
}

func TestLaneAllocatorDistinctTypesIndependentFreeLists(t *testing.T) {
	la := newLaneAllocator()
	fmtA := TaskTypeFormat{Type: ACTION, Template: "a-%d"}
	fmtB := TaskTypeFormat{Type: ACTION_CHECK, Template: "b-%d"}

	idA, _ := la.acquire(fmtA)
	la.release(ACTION, idA)

	// ACTION_CHECK's free list is untouched by ACTION's release.
	idB, meta := la.acquire(fmtB)
	assert.NotNil(t, meta)
	assert.NotEqual(t, idA, idB)
}
