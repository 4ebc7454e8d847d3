/*
Package eventqueue runs callbacks at requested wall-clock times.

Events are kept in a min-heap ordered by fire time, with insertion order
breaking ties. A single timer is armed for the earliest pending event. When it
fires, every due event is popped in order and handed to an execution context,
then the timer is re-armed for the next event or disarmed when none remain.
Callbacks never run on the timer goroutine.

Basic usage:

	q := eventqueue.New()
	defer func() { <-q.Close() }()

	id, err := q.Add(func(ctx context.Context, payload any) error {
		fmt.Println("reminder:", payload)
		return nil
	}, "stand-up", time.Now().Add(10*time.Minute))
	if err != nil {
		return err
	}

	q.Cancel(id) // no-op if it already fired

Caller-chosen ids:

AddWithID registers an event under a known id and fails with ErrDuplicateID
while an event with that id is pending. Once the event fires or is cancelled
the id may be reused.

Cancellation:

Cancel marks the event instead of removing it from the heap. The dispatcher
discards marked events when they reach the top, so a cancelled head costs at
most one wasted timer wake-up. Cancelling an unknown id does nothing.

Past fire times:

With the default Permissive policy a fire time at or before now fires on the
next dispatch. Strict rejects such times with ErrInvalidArgument:

	q, err := eventqueue.NewWithConfig(eventqueue.Config{
		PastPolicy: eventqueue.Strict,
	})

Execution context:

By default each due callback runs on its own goroutine. Set Workers to bound
concurrency with a queue-owned worker pool, or pass a workerpool.Pool as
Executor. Callbacks start in firing order in every mode.

Faults:

A callback that returns an error or panics produces an errors.CallbackFault
delivered to Config.OnFault. Faults never affect other events or the timer.
See package faultsink for log and Redis stream handlers.

Recurring events:

	id, err := q.AddCron("@every 15m", refresh, nil)

Each occurrence is re-registered under the same id when it fires; Cancel(id)
stops the series.

Metrics:

NewWithConfigAndMetrics records scheduling, firing, cancellation, fault and
timer counters plus fire lag and callback duration histograms.

Thread safety:

All Queue methods are safe for concurrent use, including from inside
callbacks. Config hooks other than OnEventStarted and OnEventCompleted run
under the queue lock and must not call the queue.
*/
package eventqueue
