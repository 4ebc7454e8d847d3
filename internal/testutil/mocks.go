package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/vnykmshr/eventq/pkg/clock"
)

// MockClock implements clock.Clock with controllable time. Timers created by
// AfterFunc fire only when Advance moves the clock past their deadline, and
// their functions run synchronously on the goroutine calling Advance.
type MockClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*MockTimer
	arms   int
}

// NewMockClock creates a new MockClock starting at the given time.
// If zero time is provided, uses current time.
func NewMockClock(start time.Time) *MockClock {
	if start.IsZero() {
		start = time.Now()
	}
	return &MockClock{now: start}
}

// Now returns the current mock time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc registers f to run once the mock time reaches now+d.
func (m *MockClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &MockTimer{clock: m, fn: f}
	m.timers = append(m.timers, t)
	m.armLocked(t, d)
	return t
}

func (m *MockClock) armLocked(t *MockTimer, d time.Duration) {
	if d < 0 {
		d = 0
	}
	t.when = m.now.Add(d)
	t.active = true
	m.arms++
}

// Advance moves the mock clock forward by d, firing every timer that becomes
// due in deadline order. Timers re-armed for an already-due deadline by a
// firing function are fired in the same call.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
	m.fireDue()
}

// Set sets the mock clock to a specific time and fires due timers.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
	m.fireDue()
}

// Fire runs due timers without moving the clock; useful after zero-delay arms.
func (m *MockClock) Fire() {
	m.fireDue()
}

func (m *MockClock) fireDue() {
	for {
		m.mu.Lock()
		var due []*MockTimer
		for _, t := range m.timers {
			if t.active && !t.when.After(m.now) {
				due = append(due, t)
			}
		}
		sort.Slice(due, func(i, j int) bool { return due[i].when.Before(due[j].when) })
		for _, t := range due {
			t.active = false
		}
		m.mu.Unlock()

		if len(due) == 0 {
			return
		}
		for _, t := range due {
			t.fn()
		}
	}
}

// ActiveTimers returns the number of armed timers.
func (m *MockClock) ActiveTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if t.active {
			n++
		}
	}
	return n
}

// NextDeadline returns the earliest armed deadline.
func (m *MockClock) NextDeadline() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var next time.Time
	found := false
	for _, t := range m.timers {
		if t.active && (!found || t.when.Before(next)) {
			next = t.when
			found = true
		}
	}
	return next, found
}

// Arms returns how many times any timer has been armed or re-armed.
func (m *MockClock) Arms() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.arms
}

// MockTimer is a timer created by MockClock.AfterFunc.
type MockTimer struct {
	clock  *MockClock
	fn     func()
	when   time.Time
	active bool
}

// Reset re-arms the timer relative to the mock clock's current time.
func (t *MockTimer) Reset(d time.Duration) bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := t.active
	t.clock.armLocked(t, d)
	return was
}

// Stop disarms the timer.
func (t *MockTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := t.active
	t.active = false
	return was
}
