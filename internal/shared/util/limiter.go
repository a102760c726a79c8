package util

import (
	"time"

	"golang.org/x/time/rate"
)

// Throttle runs a callback at most once per interval. The first call always runs.
// Safe for concurrent use.
type Throttle struct {
	inner rate.Sometimes
}

func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{inner: rate.Sometimes{First: 1, Interval: interval}}
}

// Do calls f unless another call ran within the interval.
func (t *Throttle) Do(f func()) {
	t.inner.Do(f)
}
