package clock

import (
	"testing"
	"time"
)

func TestFakeAfterFuncFiresAtDeadline(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	c := NewFake(start)

	var firedAt time.Time
	c.AfterFunc(200*time.Millisecond, func() { firedAt = c.Now() })

	c.Advance(199 * time.Millisecond)
	if !firedAt.IsZero() {
		t.Fatalf("fired early at %v", firedAt)
	}
	c.Advance(time.Millisecond)
	if want := start.Add(200 * time.Millisecond); !firedAt.Equal(want) {
		t.Fatalf("fired at %v, want %v", firedAt, want)
	}
	if c.Pending() != 0 {
		t.Fatalf("expected no pending timers, got %d", c.Pending())
	}
}

func TestFakeStopPreventsCallback(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	fired := false
	tm := c.AfterFunc(time.Second, func() { fired = true })
	if !tm.Stop() {
		t.Fatalf("expected first stop to succeed")
	}
	if tm.Stop() {
		t.Fatalf("expected second stop to report false")
	}
	c.Advance(2 * time.Second)
	if fired {
		t.Fatalf("stopped timer fired")
	}
}

func TestFakeEveryRepeatsInOrder(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	var order []string
	c.Every(300*time.Millisecond, func() { order = append(order, "a") })
	c.AfterFunc(500*time.Millisecond, func() { order = append(order, "b") })

	c.Advance(time.Second)

	want := []string{"a", "b", "a", "a"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestFakeCallbackMayScheduleWithinAdvance(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	count := 0
	c.AfterFunc(100*time.Millisecond, func() {
		count++
		c.AfterFunc(100*time.Millisecond, func() { count++ })
	})
	c.Advance(250 * time.Millisecond)
	if count != 2 {
		t.Fatalf("expected chained callbacks to fire, count=%d", count)
	}
}

func TestRealEveryStops(t *testing.T) {
	ticks := make(chan struct{}, 10)
	tm := New().Every(5*time.Millisecond, func() { ticks <- struct{}{} })
	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("no tick received")
	}
	if !tm.Stop() {
		t.Fatal("expected stop to succeed")
	}
}
