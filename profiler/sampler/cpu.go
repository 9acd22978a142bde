/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package sampler

import "golang.org/x/sys/unix"

type cpuProbe struct{}

func init() { Register(cpuProbe{}) }

func (cpuProbe) Name() string { return CPU }

// Read reports this process's accumulated user and system CPU time in
// seconds, via getrusage(RUSAGE_SELF). Grounded on the process-CPU-time
// sampling seen in per-target stats collectors for their CPU series.
func (cpuProbe) Read() (Sample, bool) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return nil, false
	}
	return Sample{
		"cpu_user":   timevalSeconds(ru.Utime),
		"cpu_system": timevalSeconds(ru.Stime),
	}, true
}

func timevalSeconds(tv unix.Timeval) float64 {
	return float64(tv.Sec) + float64(tv.Usec)/1e6
}
