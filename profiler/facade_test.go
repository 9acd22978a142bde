/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package profiler

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebuild/buildtrace/internal/mono"
)

// memSink is an in-memory sink.Sink for tests: no filesystem, no
// compression, just a growing buffer the test can decode once Stop closes
// it.
type memSink struct {
	buf    bytes.Buffer
	closed bool
}

func (s *memSink) Write(p []byte) (int, error) { return s.buf.Write(p) }
func (s *memSink) Flush() error                { return nil }
func (s *memSink) Close() error                { s.closed = true; return nil }

func decodeEvents(t *testing.T, s *memSink) []chromeEvent {
	t.Helper()
	require.True(t, s.closed)
	var evs []chromeEvent
	require.NoError(t, json.Unmarshal(s.buf.Bytes(), &evs))
	return evs
}

func freshProfiler() *Profiler { return &Profiler{} }

func TestDisabledIsSilent(t *testing.T) {
	p := freshProfiler()
	h := p.Profile(ACTION, "whatever")
	h.Release()
	assert.False(t, p.IsActive())
	assert.Nil(t, p.GetSlowestTasks())
}

func TestProfileRoundTrip(t *testing.T) {
	p := freshProfiler()
	clk := mono.NewFake(1_000_000_000)
	s := &memSink{}
	require.NoError(t, p.Start(Config{
		Sink: s, Clock: clk, StartNanos: 1_000_000_000,
		RecordAllDurations: true,
	}))

	h := p.Profile(INFO, "x")
	clk.Advance(500 * time.Microsecond)
	h.Release()

	p.Stop()

	evs := decodeEvents(t, s)
	var found *chromeEvent
	for i := range evs {
		if evs[i].Name == "x" {
			found = &evs[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "Info", found.Cat)
	assert.Equal(t, "X", found.Ph)
	assert.Equal(t, float64(0), found.TS)
	assert.Equal(t, float64(500), found.Dur)
}

func TestMinDurationFilterDropsEventButKeepsHistogram(t *testing.T) {
	p := freshProfiler()
	clk := mono.NewFake(0)
	s := &memSink{}
	require.NoError(t, p.Start(Config{
		Sink: s, Clock: clk, StartNanos: 0,
		RecordAllDurations:   false,
		CollectTaskHistograms: true,
	}))

	h := p.Profile(VFS_READ, "foo.bin")
	clk.Advance(5 * time.Millisecond) // below VFS_READ's 10ms threshold
	h.Release()

	hist := p.GetTasksHistograms()
	assert.Equal(t, uint64(1), hist.VFS[VFS_READ].Fallback.Count)

	p.Stop()
	evs := decodeEvents(t, s)
	for _, e := range evs {
		assert.NotEqual(t, "foo.bin", e.Name)
	}
}

func TestIdempotentStop(t *testing.T) {
	p := freshProfiler()
	s := &memSink{}
	require.NoError(t, p.Start(Config{Sink: s, Clock: mono.NewFake(0)}))
	p.Stop()
	assert.False(t, p.IsActive())
	assert.NotPanics(t, func() { p.Stop() })
	assert.False(t, p.IsActive())
}

func TestStartWhileActiveFails(t *testing.T) {
	p := freshProfiler()
	require.NoError(t, p.Start(Config{Sink: &memSink{}, Clock: mono.NewFake(0)}))
	defer p.Stop()
	err := p.Start(Config{Sink: &memSink{}, Clock: mono.NewFake(0)})
	assert.ErrorIs(t, err, ErrAlreadyActive)
}

func TestGetSlowestTasksReturnsRecordedActions(t *testing.T) {
	p := freshProfiler()
	clk := mono.NewFake(0)
	require.NoError(t, p.Start(Config{Sink: &memSink{}, Clock: clk, RecordAllDurations: true}))
	defer p.Stop()

	for i := 0; i < 5; i++ {
		h := p.Profile(ACTION, "a")
		clk.Advance(time.Duration(i+1) * time.Millisecond)
		h.Release()
	}
	got := p.GetSlowestTasks()
	assert.Len(t, got, 5)
}
