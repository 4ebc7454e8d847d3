/*
Package eventq provides an in-process scheduled callback queue for Go
applications.

Scheduling (pkg/scheduling):
  - eventqueue: Run callbacks at wall-clock times with cancellation and cron recurrence
  - workerpool: Bounded execution context for due callbacks

Supporting packages:
  - clock: Time source and timer abstraction, replaceable in tests
  - faultsink: Log and Redis stream handlers for callback faults
  - idgen: UUID and xid event id generators
  - metrics: Prometheus instrumentation

Example usage:

	import (
		"github.com/vnykmshr/eventq/pkg/scheduling/eventqueue"
	)

	q, err := eventqueue.NewWithConfig(eventqueue.Config{Workers: 4})
	if err != nil {
		return err
	}
	defer func() { <-q.Close() }()

	id, _ := q.AddAfter(sendReminder, user, 15*time.Minute)
	q.Cancel(id)
*/
package eventq
