/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package profiler

// TaskData is a single recorded event: a time interval (or, when
// durationNanos is 0, an instant) tagged with a TaskType and description.
// LaneID defaults to pseudoThreadID() (a stack address standing in for a
// thread id) but may be a synthetic lane minted by the lane allocator for
// async tasks.
type TaskData struct {
	LaneID        uint64
	StartNanos    int64
	DurationNanos int64
	Type          TaskType
	Description   string

	// Action carries the optional ActionTaskData extension; nil for
	// everything but profileAction-produced events.
	Action *ActionTaskData
}

// ActionTaskData extends TaskData with build-action specific fields. All
// three are nullable; inclusion in the emitted trace is additionally gated
// by the includePrimaryOutput/includeTargetLabel flags captured at start.
type ActionTaskData struct {
	Mnemonic          string
	PrimaryOutputPath string
	TargetLabel       string
}

// ThreadMetadata names a lane once, at allocation time.
type ThreadMetadata struct {
	LaneID      uint64
	DisplayName string
	SortIndex   int64
}

// SlowTask is the derived projection of a TaskData kept by the top-K
// aggregator: just enough to reconstruct a duration event, none of the
// bookkeeping fields.
type SlowTask struct {
	DurationNanos int64
	Description   string
	Type          TaskType
}
