// Package health tracks the hook-time figure reported by the development
// server's plugin listing.
package health

import (
	"math"
	"time"
)

// Sample is one extracted hook time in seconds.
type Sample struct {
	Value float64
	Seq   uint64 // arrival order within the session
	At    time.Time
}

// Reading is the tracker state right after a sample was observed.
type Reading struct {
	Min    float64
	Sample Sample
	Max    float64
}

// Tracker keeps the running minimum and maximum of observed samples.
// Bounds only tighten; there is no reset within a session.
// Tracker is not safe for concurrent use; its owner serialises access.
type Tracker struct {
	min   float64
	max   float64
	count uint64
	now   func() time.Time
}

// NewTracker returns a tracker with min at +Inf and max at -Inf.
func NewTracker() *Tracker {
	return &Tracker{
		min: math.Inf(1),
		max: math.Inf(-1),
		now: time.Now,
	}
}

// Observe folds v into the bounds and returns the resulting reading.
func (t *Tracker) Observe(v float64) Reading {
	t.count++
	if v < t.min {
		t.min = v
	}
	if v > t.max {
		t.max = v
	}
	return Reading{
		Min:    t.min,
		Sample: Sample{Value: v, Seq: t.count, At: t.now()},
		Max:    t.max,
	}
}

// Bounds returns the current minimum and maximum.
func (t *Tracker) Bounds() (lo, hi float64) {
	return t.min, t.max
}

// Count returns how many samples were observed.
func (t *Tracker) Count() uint64 {
	return t.count
}
