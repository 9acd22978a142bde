/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package profiler

import (
	"sync"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/corebuild/buildtrace/internal/cos"
	"github.com/corebuild/buildtrace/internal/nlog"
	"github.com/corebuild/buildtrace/profiler/sink"
)

var traceJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// queueDepth bounds the writer's intake channel. The profiler never blocks
// a producer on a full queue; once full, further sends are dropped and
// counted rather than awaited.
const queueDepth = 1 << 16

// chromeEvent is the single wire shape every emitted record takes, using
// the Chrome Trace Event grammar. Not every field is populated for every
// ph value; the zero value of unused fields is omitted by the
// `omitempty` tags.
type chromeEvent struct {
	Cat  string         `json:"cat,omitempty"`
	Name string         `json:"name,omitempty"`
	Ph   string         `json:"ph"`
	TS   float64        `json:"ts"`
	Dur  float64        `json:"dur,omitempty"`
	PID  int            `json:"pid"`
	TID  uint64         `json:"tid"`
	Args map[string]any `json:"args,omitempty"`
	Out  string         `json:"out,omitempty"`
}

// criticalPathLaneID is the fixed reserved tid CRITICAL_PATH_COMPONENT
// events share; the real thread id is duplicated into args.tid instead.
const criticalPathLaneID = 0

// nanosToMicros converts a nanosecond count to the float64 microsecond
// value the Chrome Trace format expects, truncating rather than rounding.
func nanosToMicros(n int64) float64 {
	return float64(n / 1000)
}

func taskDataToEvent(profileStart int64, td TaskData, includeOutput, includeLabel bool) chromeEvent {
	ph := "X"
	if td.DurationNanos == 0 {
		ph = "i"
	}
	ev := chromeEvent{
		Cat:  td.Type.Description(),
		Name: td.Description,
		Ph:   ph,
		TS:   nanosToMicros(td.StartNanos - profileStart),
		PID:  1,
		TID:  td.LaneID,
	}
	if ph == "X" {
		ev.Dur = nanosToMicros(td.DurationNanos)
	}
	if td.Type == CRITICAL_PATH_COMPONENT {
		realTID := ev.TID
		ev.TID = criticalPathLaneID
		ev.Args = mergeArgs(ev.Args, map[string]any{"tid": realTID})
	}
	if td.Action != nil {
		if includeOutput && td.Action.PrimaryOutputPath != "" {
			ev.Out = td.Action.PrimaryOutputPath
		}
		args := map[string]any{}
		if td.Action.TargetLabel != "" && includeLabel {
			args["target"] = td.Action.TargetLabel
		}
		if td.Action.Mnemonic != "" {
			args["mnemonic"] = td.Action.Mnemonic
		}
		if len(args) > 0 {
			ev.Args = mergeArgs(ev.Args, args)
		}
	}
	return ev
}

func mergeArgs(dst, src map[string]any) map[string]any {
	if dst == nil {
		return src
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func threadMetadataToEvent(m ThreadMetadata) chromeEvent {
	return chromeEvent{
		Ph:   "M",
		Name: "thread_name",
		PID:  1,
		TID:  m.LaneID,
		Args: map[string]any{"name": m.DisplayName, "sort_index": m.SortIndex},
	}
}

// counterSeriesToEvents expands a densified counter map into one Chrome
// counter event per bucket timestamp, each carrying a name-keyed map of
// series values. profileStartOffset places bucket 0 somewhere other than
// t=0 (in nanoseconds, relative to the profile's own start), and bucketDur
// is the bucket width the caller densified counters with -- a collaborator
// computing its own series is not forced onto the module's own bucket
// width.
func counterSeriesToEvents(counters DensifiedCounters, profileStartOffset int64, bucketDur time.Duration) []chromeEvent {
	// Collect the full set of bucket indices across every series so each
	// timestamp's event carries every series' value at that bucket.
	maxLen := 0
	for _, vals := range counters {
		if len(vals) > maxLen {
			maxLen = len(vals)
		}
	}
	offsetMicros := nanosToMicros(profileStartOffset)
	bucketMicros := float64(bucketDur.Microseconds())
	events := make([]chromeEvent, 0, maxLen)
	for idx := 0; idx < maxLen; idx++ {
		args := make(map[string]any, len(counters))
		any_ := false
		for t, vals := range counters {
			if idx < len(vals) && vals[idx] != 0 {
				args[t.Description()] = vals[idx]
				any_ = true
			}
		}
		if !any_ {
			continue
		}
		events = append(events, chromeEvent{
			Ph:   "C",
			Name: "counters",
			TS:   offsetMicros + float64(idx)*bucketMicros,
			PID:  1,
			Args: args,
		})
	}
	return events
}

// queueItem is whatever the writer's channel carries; exactly one of its
// fields is set.
type queueItem struct {
	event   *chromeEvent
	events  []chromeEvent
}

// eventWriter is a single background goroutine draining a multi-producer
// queue and serializing each item as one Chrome Trace JSON object, framed
// by a top-level array written incrementally. Grounded on the
// active/inactive atomic state machine and background send loop of
// transport/base.go's streamBase/sendLoop.
type eventWriter struct {
	sink    sink.Sink
	queue   chan queueItem
	dropped atomic.Uint64
	wrote   atomic.Bool // true once at least one element has been written, for comma placement
	done    chan struct{}
	wg      sync.WaitGroup
	errs    cos.ErrValue
}

func newEventWriter(s sink.Sink) *eventWriter {
	w := &eventWriter{
		sink:  s,
		queue: make(chan queueItem, queueDepth),
		done:  make(chan struct{}),
	}
	if _, err := w.sink.Write([]byte{'['}); err != nil {
		w.errs.Store(err)
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// enqueue is the wait-free producer path: a non-blocking channel send that
// drops (and counts) the item if the queue is momentarily full, rather than
// stalling the caller.
func (w *eventWriter) enqueue(item queueItem) {
	select {
	case w.queue <- item:
		reportEnqueued()
	default:
		w.dropped.Add(1)
		reportDropped(1)
	}
}

func (w *eventWriter) enqueueEvent(ev chromeEvent) { w.enqueue(queueItem{event: &ev}) }
func (w *eventWriter) enqueueEvents(evs []chromeEvent) {
	if len(evs) == 0 {
		return
	}
	w.enqueue(queueItem{events: evs})
}

func (w *eventWriter) run() {
	defer w.wg.Done()
	for {
		select {
		case item := <-w.queue:
			w.write(item)
		case <-w.done:
			w.drainRemaining()
			return
		}
	}
}

// drainRemaining flushes whatever producers enqueued before done was
// signaled but that the select above hadn't yet picked up: a racing
// producer that already fetched the old writer reference may complete
// its enqueue, and the writer drains those before returning.
func (w *eventWriter) drainRemaining() {
	for {
		select {
		case item := <-w.queue:
			w.write(item)
		default:
			return
		}
	}
}

func (w *eventWriter) write(item queueItem) {
	if item.event != nil {
		w.writeOne(*item.event)
	}
	for _, ev := range item.events {
		w.writeOne(ev)
	}
}

func (w *eventWriter) writeOne(ev chromeEvent) {
	b, err := traceJSON.Marshal(ev)
	if err != nil {
		w.errs.Store(err)
		return
	}
	if w.wrote.Swap(true) {
		if _, err := w.sink.Write([]byte{','}); err != nil {
			w.errs.Store(err)
			return
		}
	}
	if _, err := w.sink.Write(b); err != nil {
		w.errs.Store(err)
	}
}

// shutdown signals termination, joins the worker, writes the closing
// bracket, flushes and closes the sink.
func (w *eventWriter) shutdown() error {
	close(w.done)
	w.wg.Wait()
	if dropped := w.dropped.Load(); dropped > 0 {
		nlog.Warningln("event writer dropped", dropped, "events under backpressure")
	}
	if _, err := w.sink.Write([]byte{']'}); err != nil {
		w.errs.Store(err)
	}
	if err := w.sink.Flush(); err != nil {
		w.errs.Store(err)
	}
	if err := w.sink.Close(); err != nil {
		w.errs.Store(err)
	}
	return w.errs.Err()
}
