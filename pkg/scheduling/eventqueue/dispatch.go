package eventqueue

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	eqcontext "github.com/vnykmshr/eventq/pkg/common/context"
	eqerrors "github.com/vnykmshr/eventq/pkg/common/errors"
	"github.com/vnykmshr/eventq/pkg/scheduling/workerpool"
)

// armLocked points the shared timer at fireAt. Past deadlines fire immediately.
func (q *queue) armLocked(fireAt, now time.Time) {
	delay := fireAt.Sub(now)
	if delay < 0 {
		delay = 0
	}

	if q.timer == nil {
		q.timer = q.clock.AfterFunc(delay, q.dispatch)
	} else {
		q.timer.Reset(delay)
	}
	q.armed = true
	q.stats.arms.Add(1)

	if q.cfg.OnTimerArmed != nil {
		q.cfg.OnTimerArmed(delay)
	}
}

func (q *queue) disarmLocked() {
	if q.timer != nil {
		q.timer.Stop()
	}
	if !q.armed {
		return
	}
	q.armed = false
	if q.cfg.OnTimerDisarmed != nil {
		q.cfg.OnTimerDisarmed()
	}
}

// rearmLocked arms the timer for the earliest live event, or disarms it when
// nothing is pending.
func (q *queue) rearmLocked(now time.Time) {
	next, ok := q.store.peekMinFireTime()
	if !ok {
		q.disarmLocked()
		return
	}
	q.armLocked(next, now)
}

// dispatch runs on the timer goroutine. It pops every due event in order,
// queues them for hand-off, and re-arms the timer. Callbacks never run here.
func (q *queue) dispatch() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}

	now := q.clock.Now()
	q.armed = false

	var due []*event
	for {
		e := q.store.popIfDue(now)
		if e == nil {
			break
		}
		due = append(due, e)
		q.stats.fired.Add(1)
		if q.cfg.OnEventFired != nil {
			q.cfg.OnEventFired(e.view(), now.Sub(e.fireAt))
		}
		if e.schedule != nil {
			q.rescheduleLocked(e, now)
		}
	}

	if len(due) > 0 {
		q.inflight.Add(len(due))
		q.stats.inFlight.Add(int64(len(due)))
		q.enqueue(due)
	}

	q.rearmLocked(now)
	q.mu.Unlock()

	if len(due) > 0 {
		q.logger.Debug().Int("count", len(due)).Msg("dispatched due events")
	}
}

// rescheduleLocked registers the next occurrence of a recurring event under
// the same id.
func (q *queue) rescheduleLocked(e *event, now time.Time) {
	next := e.schedule.Next(now.In(q.location))
	if next.IsZero() {
		q.logger.Warn().Str("event_id", string(e.id)).Msg("cron schedule has no further occurrences")
		return
	}
	q.insertLocked(&event{
		id:       e.id,
		fireAt:   next,
		callback: e.callback,
		payload:  e.payload,
		schedule: e.schedule,
	})
}

// handoff is the FIFO between the timer goroutine and the execution context.
// A single drain goroutine runs while the FIFO is non-empty.
type handoff struct {
	mu      sync.Mutex
	jobs    []*event
	running bool
}

func (q *queue) enqueue(due []*event) {
	q.handoff.mu.Lock()
	q.handoff.jobs = append(q.handoff.jobs, due...)
	if !q.handoff.running {
		q.handoff.running = true
		go q.drain()
	}
	q.handoff.mu.Unlock()
}

func (q *queue) drain() {
	for {
		q.handoff.mu.Lock()
		if len(q.handoff.jobs) == 0 {
			q.handoff.running = false
			q.handoff.mu.Unlock()
			return
		}
		e := q.handoff.jobs[0]
		q.handoff.jobs[0] = nil
		q.handoff.jobs = q.handoff.jobs[1:]
		q.handoff.mu.Unlock()

		q.launch(e)
	}
}

// launch starts e on the execution context and waits until its callback has
// been entered, so callbacks start in firing order.
func (q *queue) launch(e *event) {
	started := make(chan struct{})
	task := workerpool.TaskFunc(func(ctx context.Context) error {
		q.invoke(ctx, e, started)
		return nil
	})

	if q.executor == nil {
		go task(context.Background())
		<-started
		return
	}

	if err := q.executor.Submit(task); err != nil {
		q.finish(e, 0, &eqerrors.CallbackFault{
			EventID: string(e.id),
			FireAt:  e.fireAt,
			Err:     eqerrors.NewOperationError(module, "handoff", err).WithContext("executor rejected callback"),
		})
		return
	}
	<-started
}

func (q *queue) invoke(parent context.Context, e *event, started chan<- struct{}) {
	ctx, cancel := eqcontext.WithOptionalTimeout(parent, q.cfg.CallbackTimeout)
	defer cancel()

	start := time.Now()
	fault := q.call(ctx, e, started)
	q.finish(e, time.Since(start), fault)
}

// call runs OnEventStarted and closes started immediately before entering
// the callback.
func (q *queue) call(ctx context.Context, e *event, started chan<- struct{}) (fault *eqerrors.CallbackFault) {
	defer func() {
		if r := recover(); r != nil {
			fault = eqerrors.NewPanicFault(string(e.id), e.fireAt, r, debug.Stack())
		}
	}()

	func() {
		defer close(started)
		if q.cfg.OnEventStarted != nil {
			q.cfg.OnEventStarted(e.view())
		}
	}()
	err := e.callback(ctx, e.payload)
	if err == nil {
		return nil
	}
	if eqcontext.IsTimedOut(ctx) && !errors.Is(err, eqerrors.ErrTimeout) {
		err = fmt.Errorf("%w: %w", eqerrors.ErrTimeout, err)
	}
	return &eqerrors.CallbackFault{EventID: string(e.id), FireAt: e.fireAt, Err: err}
}

// finish records the outcome of one handed-off event and releases it.
func (q *queue) finish(e *event, took time.Duration, fault *eqerrors.CallbackFault) {
	defer q.inflight.Done()
	defer q.stats.inFlight.Add(-1)

	q.stats.completed.Add(1)

	var err error
	if fault != nil {
		err = fault
		q.stats.faults.Add(1)
	}
	if q.cfg.OnEventCompleted != nil {
		q.cfg.OnEventCompleted(e.view(), took, err)
	}
	if fault != nil {
		q.reportFault(fault)
	}
}

func (q *queue) reportFault(fault *eqerrors.CallbackFault) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error().Interface("panic", r).Str("event_id", fault.EventID).Msg("fault handler panicked")
		}
	}()
	q.onFault(fault)
}

func (q *queue) logFault(fault *eqerrors.CallbackFault) {
	ev := q.logger.Error().
		Err(fault.Err).
		Str("event_id", fault.EventID).
		Time("fire_at", fault.FireAt)
	if fault.IsPanic() {
		ev = ev.Bytes("stack", fault.Stack)
	}
	ev.Msg("callback fault")
}
