package testutil

import (
	"sync"
	"time"
)

// Epoch is the wall-clock time DeterministicClock starts from.
var Epoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock is an engine.Clock whose readings depend only on how
// many times it has been read. The n-th call to Now returns start + n*step,
// so patch timestamps are distinct, increasing and identical across runs.
//
// Safe for concurrent use.
type DeterministicClock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	ticks int64
}

// NewDeterministicClock returns a clock that starts at Epoch and advances
// one second per reading.
func NewDeterministicClock() *DeterministicClock {
	return NewSteppedClock(Epoch, time.Second)
}

// NewSteppedClock returns a clock that starts at start and advances by step
// per reading.
func NewSteppedClock(start time.Time, step time.Duration) *DeterministicClock {
	return &DeterministicClock{start: start, step: step}
}

// Now advances the clock by one step and returns the new reading.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
	return c.start.Add(time.Duration(c.ticks) * c.step)
}

// Ticks reports how many times Now has been called since the last Reset.
func (c *DeterministicClock) Ticks() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// Reset rewinds the clock so the next reading is start + step again.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = 0
}
