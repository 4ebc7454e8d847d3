package workerpool

import (
	"context"
	"sync"
	"time"
)

// Task is a unit of work run by a pool worker. Execute should return
// promptly once ctx is done.
type Task interface {
	Execute(ctx context.Context) error
}

// TaskFunc adapts a function to Task.
type TaskFunc func(ctx context.Context) error

func (f TaskFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// Result reports one finished task.
type Result struct {
	Task     Task
	Error    error
	Duration time.Duration
	WorkerID int
}

// Pool runs submitted tasks on a fixed set of workers.
type Pool interface {
	// Submit queues task, blocking while the queue is full. It fails with
	// ErrClosed once Shutdown has been called.
	Submit(task Task) error

	// SubmitWithContext is Submit bounded by ctx; ctx is also passed to the task.
	SubmitWithContext(ctx context.Context, task Task) error

	// Results delivers finished tasks unless DropResults is set. It is closed
	// after shutdown completes.
	Results() <-chan Result

	// Shutdown stops accepting tasks and lets workers finish the queue. The
	// returned channel is closed when every worker has exited. Every task
	// accepted by Submit runs before that.
	Shutdown() <-chan struct{}

	Size() int
	QueueSize() int
	ActiveWorkers() int
	TotalSubmitted() int64
	TotalCompleted() int64
}

// Config holds pool configuration.
type Config struct {
	// WorkerCount must be positive.
	WorkerCount int

	// QueueSize bounds the task queue. 0 or -1 hands each task straight to an
	// idle worker.
	QueueSize int

	// TaskTimeout caps each task's context. Zero means no cap.
	TaskTimeout time.Duration

	// DropResults skips delivery on Results(). OnTaskComplete still sees
	// every result.
	DropResults bool

	// PanicHandler receives recovered task panics. If nil, the panic and its
	// stack become the task's error.
	PanicHandler func(task Task, recovered interface{})

	// OnTaskComplete runs on the worker after every task.
	OnTaskComplete func(workerID int, result Result)
}

type queuedTask struct {
	task Task
	ctx  context.Context
}

type workerPool struct {
	config Config

	tasks   chan queuedTask
	results chan Result

	// submitMu orders Submit against Shutdown: submissions hold it shared,
	// Shutdown takes it exclusively before releasing the workers.
	submitMu sync.RWMutex
	closed   bool
	closing  chan struct{} // unblocks Submit calls waiting on a full queue
	stopping chan struct{} // tells workers to drain and exit
	stopOnce sync.Once
	stopped  chan struct{}
	workerWg sync.WaitGroup

	mu             sync.RWMutex
	activeWorkers  int
	totalSubmitted int64
	totalCompleted int64
}

// New creates a pool with workerCount workers and a queue of queueSize.
func New(workerCount, queueSize int) Pool {
	return NewWithConfig(Config{
		WorkerCount: workerCount,
		QueueSize:   queueSize,
	})
}

// NewWithConfig creates a pool. It panics on a non-positive WorkerCount or a
// QueueSize below -1.
func NewWithConfig(config Config) Pool {
	if config.WorkerCount <= 0 {
		panic("worker count must be positive")
	}
	if config.QueueSize < -1 {
		panic("queue size must be >= -1")
	}

	size := config.QueueSize
	if size < 0 {
		size = 0
	}

	p := &workerPool{
		config:   config,
		tasks:    make(chan queuedTask, size),
		results:  make(chan Result),
		closing:  make(chan struct{}),
		stopping: make(chan struct{}),
		stopped:  make(chan struct{}),
	}

	for id := 0; id < config.WorkerCount; id++ {
		p.workerWg.Add(1)
		go p.work(id)
	}

	return p
}
