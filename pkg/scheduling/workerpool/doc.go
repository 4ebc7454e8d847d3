/*
Package workerpool provides a fixed-size worker pool.

A worker pool manages a fixed number of worker goroutines that execute tasks
concurrently. In eventq it is one of the execution contexts an event queue can
hand due callbacks to, so the timer goroutine never runs user code.

Basic usage:

	pool := workerpool.New(4, 100) // 4 workers, queue size 100
	defer func() { <-pool.Shutdown() }()

	task := workerpool.TaskFunc(func(ctx context.Context) error {
		// Do work
		return nil
	})

	if err := pool.Submit(task); err != nil {
		log.Printf("Failed to submit: %v", err)
	}

	result := <-pool.Results()
	if result.Error != nil {
		log.Printf("Task failed: %v", result.Error)
	}

Results:

Every result is passed to Config.OnTaskComplete when set. Results() delivers
the same values on a channel; a worker waits at most 100ms for a reader before
dropping the result. Set DropResults when nothing reads the channel, which is
the case when the pool backs an event queue:

	pool := workerpool.NewWithConfig(workerpool.Config{
		WorkerCount: 8,
		QueueSize:   256,
		DropResults: true,
		TaskTimeout: 30 * time.Second,
	})
	q, err := eventqueue.NewWithConfig(eventqueue.Config{Executor: pool})

Panics:

A panicking task is recovered. Without a PanicHandler the panic and stack are
reported as the task's error.

Shutdown:

Shutdown stops accepting tasks, lets workers drain what was already queued, and
returns a channel closed once every worker has exited.
*/
package workerpool
