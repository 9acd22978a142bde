// Package nlog is a small leveled logger in the shape of a cmn/nlog-style
// logger: buffered, flushed on a tick rather than per call, with a
// package-level verbosity gate so hot paths can skip formatting work
// entirely.
/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package nlog

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

var (
	mu  sync.Mutex
	out = bufio.NewWriterSize(os.Stderr, 16*1024)

	verbosity atomic.Int32
	lastFlush atomic.Int64
)

// SetVerbosity sets the global verbosity level consulted by V/FastV.
func SetVerbosity(v int) { verbosity.Store(int32(v)) }

// V reports whether logging at the given verbosity level is enabled for
// module (module is accepted for call-site compatibility with a
// Rom.V(n, module)-style gate and is otherwise unused by this minimal
// logger).
func V(level int, _ string) bool { return int(verbosity.Load()) >= level }

func write(prefix string, a []any) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprint(out, prefix)
	fmt.Fprintln(out, a...)
}

func writeDepth(prefix string, depth int, a []any) {
	_, file, line, ok := runtime.Caller(depth + 2)
	if !ok {
		file, line = "???", 0
	}
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, "%s[%s:%d] ", prefix, file, line)
	fmt.Fprintln(out, a...)
}

func Infoln(a ...any)    { write("I ", a) }
func Warningln(a ...any) { write("W ", a) }
func Errorln(a ...any)   { write("E ", a) }

func InfoDepth(depth int, a ...any)    { writeDepth("I ", depth, a) }
func WarningDepth(depth int, a ...any) { writeDepth("W ", depth, a) }
func ErrorDepth(depth int, a ...any)   { writeDepth("E ", depth, a) }

const ActNone = 0

// Flush drains the buffered writer. act is reserved for parity with
// Flush(ActNone)-style call sites elsewhere; this logger only has one
// behavior regardless of act.
func Flush(act int) {
	mu.Lock()
	defer mu.Unlock()
	out.Flush()
	lastFlush.Store(time.Now().UnixNano())
}

// Since returns the time elapsed since the last Flush, for callers deciding
// whether to flush on a periodic tick (compare stats/common.go's
// nlog.Since(now) > flushTime check).
func Since(nowNanos int64) time.Duration {
	last := lastFlush.Load()
	if last == 0 {
		return 0
	}
	d := nowNanos - last
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

// OOB ("out of band") reports whether an immediate flush is warranted
// regardless of the periodic schedule, e.g. right after an error burst.
// This minimal logger never forces one; it exists for call-site parity.
func OOB() bool { return false }
