package client

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerOnlyLastCallRuns(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var calls int64
	for i := 0; i < 5; i++ {
		d.Trigger(func() { atomic.AddInt64(&calls, 1) })
	}

	time.Sleep(80 * time.Millisecond)
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestDebouncerSeparateWindows(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Stop()

	var calls int64
	d.Trigger(func() { atomic.AddInt64(&calls, 1) })
	time.Sleep(50 * time.Millisecond)
	d.Trigger(func() { atomic.AddInt64(&calls, 1) })
	time.Sleep(50 * time.Millisecond)

	if got := atomic.LoadInt64(&calls); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls int64
	d.Trigger(func() { atomic.AddInt64(&calls, 1) })
	d.Stop()

	time.Sleep(80 * time.Millisecond)
	if got := atomic.LoadInt64(&calls); got != 0 {
		t.Errorf("calls = %d, want 0 after Stop", got)
	}
}

func TestDebouncerDefaultDelay(t *testing.T) {
	d := NewDebouncer(0)
	defer d.Stop()
	if d.delay != DefaultDebounceDelay {
		t.Errorf("delay = %v, want %v", d.delay, DefaultDebounceDelay)
	}
}
