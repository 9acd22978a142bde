/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package profiler

import (
	"strconv"
	"sync"
	"time"

	cuckoo "github.com/seiflotfy/cuckoofilter"
)

// slimMicroThreshold is the duration below which a duration event is a
// candidate for merging under slim-profile mode: same-lane, same-type,
// same-description events shorter than this are treated as repeats of one
// logical micro-event and only the first one in a run is emitted, whether
// or not other events came in between.
const slimMicroThreshold = 2 * time.Millisecond

// slimFilter implements the merging pass slimProfile enables: it
// suppresses repeat emission of same-category micro-events (recordTask
// separately drops the primary-output and target-label fields in slim
// mode), trading trace completeness for a smaller output file on very
// high-event-rate workloads. Keys seen since the last Start are
// remembered in a cuckoo filter rather than an exact map so
// memory stays bounded regardless of the description cardinality a build
// throws at it; a false positive only costs one dropped duplicate-looking
// event, never a correctness issue for the trace consumer.
type slimFilter struct {
	mu     sync.Mutex
	filter *cuckoo.Filter
}

// slimFilterCapacity bounds the cuckoo filter's backing table. At default
// load factor this comfortably covers one profiling run's distinct
// (lane, type, description) triples for a large build.
const slimFilterCapacity = 1 << 20

func newSlimFilter() *slimFilter {
	return &slimFilter{filter: cuckoo.NewFilter(slimFilterCapacity)}
}

func slimKey(laneID uint64, t TaskType, desc string) []byte {
	b := make([]byte, 0, len(desc)+24)
	b = strconv.AppendUint(b, laneID, 10)
	b = append(b, '|')
	b = strconv.AppendInt(b, int64(t), 10)
	b = append(b, '|')
	b = append(b, desc...)
	return b
}

// shouldSuppress reports whether this micro-event is a repeat of one
// already seen on the same lane, for the same type and description, and
// records it as seen if not. Only called for events under
// slimMicroThreshold.
func (f *slimFilter) shouldSuppress(laneID uint64, t TaskType, desc string) bool {
	key := slimKey(laneID, t, desc)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.filter.Lookup(key) {
		return true
	}
	f.filter.InsertUnique(key)
	return false
}

// reset clears the filter's seen-set; called at Start so successive runs
// of the singleton don't inherit stale suppression state.
func (f *slimFilter) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter.Reset()
}
