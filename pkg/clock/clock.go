// Package clock abstracts the clock source and the one-shot timer primitive a
// host supplies to an event queue. Production code uses Real; tests inject a
// manually advanced clock for deterministic firing.
package clock

import "time"

// Clock provides the current time and one-shot timers.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc waits for the duration to elapse and then calls f in its own
	// goroutine. A non-positive duration fires as soon as possible.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a re-armable one-shot timer created by Clock.AfterFunc.
type Timer interface {
	// Reset re-arms the timer to call its function after d. Returns true if the
	// timer was active.
	Reset(d time.Duration) bool

	// Stop prevents the timer from firing. Returns true if the call stopped an
	// active timer.
	Stop() bool
}

type realClock struct{}

// Real returns a Clock backed by the time package.
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
