//go:build debug

/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package debug

import "fmt"

func Assert(cond bool, args ...any) {
	if !cond {
		msg := "DEBUG PANIC"
		if len(args) > 0 {
			msg += ": " + fmt.Sprint(args...)
		}
		panic(msg)
	}
}

func AssertNoErr(err error) {
	if err != nil {
		panic("DEBUG PANIC: " + err.Error())
	}
}

func AssertFunc(f func() bool) {
	Assert(f())
}
