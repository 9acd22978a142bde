// Package cos provides small low-level utilities shared across the profiler
// packages, in the spirit of a cmn/cos-style common utility package.
/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package cos

import (
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/corebuild/buildtrace/internal/ratomic"
)

// ErrValue is a first-error-wins atomic box: the first Store sticks, later
// Stores only bump a counter. Ported from cmn/cos/err.go's ErrValue, used by
// the event writer to surface its first I/O failure to the BugReporter
// without a lock on the common (no-error) path.
type ErrValue struct {
	box ratomic.Ptr[error]
	cnt ratomic.Int64
}

func (ea *ErrValue) Store(err error) {
	if ea.cnt.Inc() == 1 {
		ea.box.Store(&err)
	}
}

func (ea *ErrValue) Err() error {
	p := ea.box.Load()
	if p == nil {
		return nil
	}
	err := *p
	if cnt := ea.cnt.Load(); cnt > 1 {
		err = fmt.Errorf("%w (cnt=%d)", err, cnt)
	}
	return err
}

// IsErrConnectionReset reports a TCP RST or broken pipe, used by the
// optional remote sink (sink/s3sink) to decide whether an upload failure is
// worth retrying.
func IsErrConnectionReset(err error) bool {
	return errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE)
}

// NonZero returns v if non-zero, else def -- mirrors cos.NonZero used
// throughout stats/common.go and transport/base.go for config defaulting.
func NonZero[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// ClampDuration clamps d to [lo, hi].
func ClampDuration(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}
