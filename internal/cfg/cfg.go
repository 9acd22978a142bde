// Package cfg holds small config value types, in the tagged-struct style of
// a cmn-style config package. No other package in this module imports it.
/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package cfg

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration unmarshals from a Go duration string ("200ms", "1s") instead of a
// raw integer, the same convenience cmn.Duration-like config fields
// elsewhere provide.
type Duration time.Duration

func (d Duration) D() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var nanos int64
		if err2 := json.Unmarshal(b, &nanos); err2 != nil {
			return fmt.Errorf("cfg.Duration: %w", err)
		}
		*d = Duration(nanos)
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("cfg.Duration: %w", err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
