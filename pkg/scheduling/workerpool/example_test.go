package workerpool_test

import (
	"context"
	"fmt"
	"log"

	"github.com/vnykmshr/eventq/pkg/scheduling/workerpool"
)

// Example demonstrates basic usage of the worker pool
func Example() {
	pool := workerpool.New(3, 10)
	defer func() { <-pool.Shutdown() }()

	task := workerpool.TaskFunc(func(ctx context.Context) error {
		fmt.Println("Task executed")
		return nil
	})

	if err := pool.Submit(task); err != nil {
		log.Printf("Failed to submit task: %v", err)
		return
	}

	result := <-pool.Results()
	if result.Error != nil {
		log.Printf("Task failed: %v", result.Error)
	}

	// Output: Task executed
}

// Example_completionHook shows a pool that reports completion through a hook
// instead of the Results channel, as used for queue callbacks.
func Example_completionHook() {
	done := make(chan struct{})
	pool := workerpool.NewWithConfig(workerpool.Config{
		WorkerCount: 2,
		DropResults: true,
		OnTaskComplete: func(workerID int, result workerpool.Result) {
			fmt.Println("completed, error:", result.Error)
			close(done)
		},
	})
	defer func() { <-pool.Shutdown() }()

	_ = pool.Submit(workerpool.TaskFunc(func(ctx context.Context) error { return nil }))
	<-done

	// Output: completed, error: <nil>
}
