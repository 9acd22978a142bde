/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package profiler

import "github.com/teris-io/shortid"

// NewBuildID mints a short, URL-safe identifier for a profiling run.
// cmd/traceprof uses it for Config.BuildID when --build-id is not given;
// Start itself does not fill in an empty Config.BuildID.
func NewBuildID() (string, error) {
	return shortid.Generate()
}
