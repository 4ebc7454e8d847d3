package workerpool

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	eqerrors "github.com/vnykmshr/eventq/pkg/common/errors"
)

func (p *workerPool) Submit(task Task) error {
	return p.SubmitWithContext(context.Background(), task)
}

func (p *workerPool) SubmitWithContext(ctx context.Context, task Task) error {
	if task == nil {
		return eqerrors.NewArgumentError("workerpool", "task", nil, "cannot be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	if p.closed {
		return errPoolClosed()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case p.tasks <- queuedTask{task: task, ctx: ctx}:
		p.mu.Lock()
		p.totalSubmitted++
		p.mu.Unlock()
		return nil
	case <-p.closing:
		return errPoolClosed()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func errPoolClosed() error {
	return fmt.Errorf("cannot submit task: worker pool has been shut down: %w", eqerrors.ErrClosed)
}

func (p *workerPool) Results() <-chan Result {
	return p.results
}

func (p *workerPool) Shutdown() <-chan struct{} {
	p.stopOnce.Do(func() {
		close(p.closing)

		// Wait out in-flight submissions so nothing lands in the queue after
		// the workers have drained it.
		p.submitMu.Lock()
		p.closed = true
		p.submitMu.Unlock()

		close(p.stopping)

		go func() {
			p.workerWg.Wait()
			close(p.results)
			close(p.stopped)
		}()
	})

	return p.stopped
}

func (p *workerPool) Size() int {
	return p.config.WorkerCount
}

func (p *workerPool) QueueSize() int {
	return len(p.tasks)
}

func (p *workerPool) ActiveWorkers() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.activeWorkers
}

func (p *workerPool) TotalSubmitted() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.totalSubmitted
}

func (p *workerPool) TotalCompleted() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.totalCompleted
}

func (p *workerPool) work(id int) {
	defer p.workerWg.Done()

	for {
		select {
		case qt := <-p.tasks:
			p.execute(id, qt)
		case <-p.stopping:
			for {
				select {
				case qt := <-p.tasks:
					p.execute(id, qt)
				default:
					return
				}
			}
		}
	}
}

func (p *workerPool) execute(id int, qt queuedTask) {
	start := time.Now()
	var err error

	p.mu.Lock()
	p.activeWorkers++
	p.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			if p.config.PanicHandler != nil {
				p.config.PanicHandler(qt.task, r)
			} else {
				err = fmt.Errorf("task panicked: %v\nStack trace:\n%s", r, debug.Stack())
			}
		}

		p.mu.Lock()
		p.activeWorkers--
		p.totalCompleted++
		p.mu.Unlock()

		p.report(Result{
			Task:     qt.task,
			Error:    err,
			Duration: time.Since(start),
			WorkerID: id,
		})
	}()

	ctx := qt.ctx
	if p.config.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.TaskTimeout)
		defer cancel()
	}

	err = qt.task.Execute(ctx)
}

func (p *workerPool) report(result Result) {
	if p.config.OnTaskComplete != nil {
		p.config.OnTaskComplete(result.WorkerID, result)
	}
	if p.config.DropResults {
		return
	}

	select {
	case p.results <- result:
	case <-time.After(100 * time.Millisecond):
		// no reader
	}
}
