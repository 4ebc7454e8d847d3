/*
Package scheduling provides time-based callback scheduling and execution
primitives.

  - eventqueue: Heap-ordered pending events driven by a single timer
  - workerpool: Fixed worker pool for concurrent task execution

Event Queue:

	q := eventqueue.New()
	defer func() { <-q.Close() }()

	// One-shot event
	id, err := q.Add(callback, payload, time.Now().Add(time.Minute))

	// Recurring event
	q.AddCron("0 9 * * MON-FRI", callback, payload) // Weekdays at 9 AM

	q.Cancel(id)

Worker Pool:

A pool can back an event queue so that at most a fixed number of callbacks
run at once:

	pool := workerpool.NewWithConfig(workerpool.Config{
		WorkerCount: 4,
		QueueSize:   100,
		DropResults: true,
	})
	q, err := eventqueue.NewWithConfig(eventqueue.Config{Executor: pool})

All scheduling components are thread-safe and integrate with context
for cancellation and timeout handling.
*/
package scheduling
