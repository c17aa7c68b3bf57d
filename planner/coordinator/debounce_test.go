package coordinator

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalescesTriggers(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var runs int32

	for i := 0; i < 5; i++ {
		d.Trigger(func() { atomic.AddInt32(&runs, 1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Fatalf("expected 1 run, got %d", got)
	}
}

func TestDebouncerStopCancelsPendingRun(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var runs int32

	d.Trigger(func() { atomic.AddInt32(&runs, 1) })
	d.Stop()
	time.Sleep(60 * time.Millisecond)

	if got := atomic.LoadInt32(&runs); got != 0 {
		t.Fatalf("expected no runs after Stop, got %d", got)
	}
}

func TestDebouncerRunsAgainAfterQuietPeriod(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var runs int32

	d.Trigger(func() { atomic.AddInt32(&runs, 1) })
	time.Sleep(40 * time.Millisecond)
	d.Trigger(func() { atomic.AddInt32(&runs, 1) })
	time.Sleep(40 * time.Millisecond)

	if got := atomic.LoadInt32(&runs); got != 2 {
		t.Fatalf("expected 2 runs, got %d", got)
	}
}
