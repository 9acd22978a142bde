/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package profiler

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistogramAddWithinBuckets(t *testing.T) {
	h := &histogram{}
	h.add(0)
	h.add(5)
	h.add(19)
	snap := h.snapshot()
	assert.Equal(t, uint64(3), snap.Count)
	assert.Equal(t, uint64(1), snap.Buckets[0])
	assert.Equal(t, uint64(1), snap.Buckets[5])
	assert.Equal(t, uint64(1), snap.Buckets[19])
	assert.Equal(t, uint64(0), snap.Overflow)
}

func TestHistogramOverflow(t *testing.T) {
	h := &histogram{}
	h.add(1000)
	snap := h.snapshot()
	assert.Equal(t, uint64(1), snap.Overflow)
	assert.Equal(t, uint64(1), snap.Count)
}

func TestHistogramConcurrentAdd(t *testing.T) {
	h := &histogram{}
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(v int64) {
			defer wg.Done()
			h.add(v % numHistogramBuckets)
		}(int64(i))
	}
	wg.Wait()
	assert.Equal(t, uint64(100), h.snapshot().Count)
}

func TestVFSCascadeRouting(t *testing.T) {
	c := newVFSCascade()
	c.add(1, "main.go")
	c.add(2, "bazel-out/k8-fastbuild/genfiles/x.h")
	c.add(3, "meta.json")
	c.add(4, "unrelated.bin")

	snap := c.snapshot()
	assert.Equal(t, uint64(1), snap.Named["source"].Count)
	assert.Equal(t, uint64(1), snap.Named["generated"].Count)
	assert.Equal(t, uint64(1), snap.Named["metadata"].Count)
	assert.Equal(t, uint64(1), snap.Fallback.Count)
}

func TestHistogramSetRoutesVFSAndPlain(t *testing.T) {
	hs := newHistogramSet()
	hs.add(ACTION, 3, "ignored")
	hs.add(VFS_READ, 3, "foo.go")
	snap := hs.snapshot()
	assert.Equal(t, uint64(1), snap.Plain[ACTION].Count)
	assert.Equal(t, uint64(1), snap.VFS[VFS_READ].Named["source"].Count)
}
