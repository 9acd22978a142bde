/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package sampler

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProbe struct {
	name   string
	sample Sample
	ok     bool
}

func (f fakeProbe) Name() string          { return f.name }
func (f fakeProbe) Read() (Sample, bool)  { return f.sample, f.ok }

func TestRegisterAndEnabled(t *testing.T) {
	Register(fakeProbe{name: "test-probe-a", sample: Sample{"x": 1}, ok: true})
	Register(fakeProbe{name: "test-probe-b", sample: Sample{"y": 2}, ok: true})

	got := Enabled("test-probe-b", "test-probe-a", "does-not-exist")
	require.Len(t, got, 2)
	assert.Equal(t, "test-probe-b", got[0].Name())
	assert.Equal(t, "test-probe-a", got[1].Name())
}

func TestRunnerEmitsOnlyNonEmptySamples(t *testing.T) {
	Register(fakeProbe{name: "test-probe-empty", sample: Sample{}, ok: true})
	Register(fakeProbe{name: "test-probe-full", sample: Sample{"v": 1}, ok: true})

	var mu sync.Mutex
	var seen []string
	r := NewRunner([]string{"test-probe-empty", "test-probe-full"}, func(name string, s Sample, atNanos int64) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, name)
	}, func() int64 { return 0 })

	r.sampleOnce()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"test-probe-full"}, seen)
}

func TestRunnerStartStopNoProbes(t *testing.T) {
	r := NewRunner(nil, func(string, Sample, int64) {}, func() int64 { return 0 })
	r.Start()
	r.Stop()
}
