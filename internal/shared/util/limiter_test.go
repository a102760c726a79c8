package util

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestThrottle(t *testing.T) {
	th := NewThrottle(time.Hour)

	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		th.Do(func() { calls.Add(1) })
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected exactly one call within the interval, got %d", got)
	}
}

func TestThrottle_IntervalElapsed(t *testing.T) {
	th := NewThrottle(20 * time.Millisecond)

	var calls atomic.Int32
	th.Do(func() { calls.Add(1) })
	time.Sleep(40 * time.Millisecond)
	th.Do(func() { calls.Add(1) })

	if got := calls.Load(); got != 2 {
		t.Errorf("expected two calls, got %d", got)
	}
}
