/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package integration

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/corebuild/buildtrace/internal/mono"
	"github.com/corebuild/buildtrace/profiler"
	"github.com/corebuild/buildtrace/profiler/sink"
)

type memSink struct {
	buf    bytes.Buffer
	closed bool
}

func (s *memSink) Write(p []byte) (int, error) { return s.buf.Write(p) }
func (s *memSink) Flush() error                { return nil }
func (s *memSink) Close() error                { s.closed = true; return nil }

var _ = Describe("Profiler end-to-end", func() {
	var p *profiler.Profiler
	var clk *mono.Fake

	BeforeEach(func() {
		p = &profiler.Profiler{}
		clk = mono.NewFake(0)
	})

	AfterEach(func() {
		if p.IsActive() {
			p.Stop()
		}
	})

	It("produces a well-formed JSON array end to end", func() {
		s := &memSink{}
		Expect(p.Start(profiler.Config{
			Sink: s, Clock: clk, RecordAllDurations: true,
			CollectTaskHistograms: true,
		})).To(Succeed())

		for i := 0; i < 50; i++ {
			h := p.Profile(profiler.ACTION, "build-step")
			clk.Advance(time.Millisecond)
			h.Release()
		}

		p.Stop()
		Expect(s.closed).To(BeTrue())

		var events []json.RawMessage
		Expect(json.Unmarshal(s.buf.Bytes(), &events)).To(Succeed())
		Expect(len(events)).To(BeNumerically(">=", 50))
	})

	It("writes an empty-or-near-empty array for an immediate start/stop", func() {
		s := &memSink{}
		Expect(p.Start(profiler.Config{Sink: s, Clock: clk})).To(Succeed())
		p.Stop()

		var events []json.RawMessage
		Expect(json.Unmarshal(s.buf.Bytes(), &events)).To(Succeed())
		Expect(len(events)).To(BeNumerically("<=", 3))
	})

	It("is idempotent on a second stop", func() {
		s := &memSink{}
		Expect(p.Start(profiler.Config{Sink: s, Clock: clk})).To(Succeed())
		p.Stop()
		Expect(func() { p.Stop() }).ToNot(Panic())
		Expect(p.IsActive()).To(BeFalse())
	})

	It("produces a gzip stream whose contents decode to the same shape as plain output", func() {
		path := GinkgoT().TempDir() + "/trace.json.gz"
		gzSink, err := sink.NewGzipFile(path)
		Expect(err).NotTo(HaveOccurred())

		Expect(p.Start(profiler.Config{
			Sink: gzSink, Clock: clk, RecordAllDurations: true,
		})).To(Succeed())
		for i := 0; i < 10; i++ {
			h := p.Profile(profiler.ACTION, "gz-step")
			clk.Advance(time.Millisecond)
			h.Release()
		}
		p.Stop()

		raw, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(raw[:2]).To(Equal([]byte{0x1F, 0x8B}))

		gz, err := gzip.NewReader(bytes.NewReader(raw))
		Expect(err).NotTo(HaveOccurred())
		var events []json.RawMessage
		Expect(json.NewDecoder(gz).Decode(&events)).To(Succeed())
		Expect(len(events)).To(BeNumerically(">=", 10))
	})

	It("assigns a synthetic lane at or above 1,000,000 to an async task", func() {
		s := &memSink{}
		Expect(p.Start(profiler.Config{Sink: s, Clock: clk, RecordAllDurations: true})).To(Succeed())

		fut := profiler.ProfileAsync(p, profiler.ACTION, "async-job", func(sp *profiler.ScopedProfiler) (int, error) {
			Expect(sp.LaneID()).To(BeNumerically(">=", 1_000_000))
			return 42, nil
		})
		val, err := fut.Get()
		Expect(err).NotTo(HaveOccurred())
		Expect(val).To(Equal(42))

		p.Stop()

		var events []json.RawMessage
		Expect(json.Unmarshal(s.buf.Bytes(), &events)).To(Succeed())

		var sawMetaAboveThreshold bool
		for _, raw := range events {
			var ev struct {
				Ph  string `json:"ph"`
				TID uint64 `json:"tid"`
			}
			Expect(json.Unmarshal(raw, &ev)).To(Succeed())
			if ev.Ph == "M" && ev.TID >= 1_000_000 {
				sawMetaAboveThreshold = true
			}
		}
		Expect(sawMetaAboveThreshold).To(BeTrue())
	})
})
