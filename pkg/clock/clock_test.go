package clock

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestRealClock_AfterFunc(t *testing.T) {
	c := Real()

	var fired int32
	done := make(chan struct{})
	tm := c.AfterFunc(10*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}

	if tm.Stop() {
		t.Error("Stop after firing should report inactive")
	}

	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Errorf("fired %d times, want 1", got)
	}
}

func TestRealClock_ResetAfterFire(t *testing.T) {
	c := Real()

	fired := make(chan struct{}, 2)
	tm := c.AfterFunc(0, func() { fired <- struct{}{} })
	<-fired

	tm.Reset(time.Millisecond)
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("reset timer did not fire again")
	}
}

func TestRealClock_Stop(t *testing.T) {
	c := Real()

	var fired int32
	tm := c.AfterFunc(50*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	if !tm.Stop() {
		t.Fatal("Stop should report an active timer")
	}

	time.Sleep(80 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Error("stopped timer fired")
	}

	if now := c.Now(); now.IsZero() {
		t.Error("Now returned zero time")
	}
}
