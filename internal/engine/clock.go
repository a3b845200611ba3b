package engine

import "time"

// Clock supplies patch timestamps.
//
// Timestamps are informational only: patch order is the position in the
// composition's patch log and Seq (the composition version the patch
// produced), never wall-clock time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current time in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}
