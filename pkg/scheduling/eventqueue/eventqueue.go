package eventqueue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/vnykmshr/eventq/pkg/clock"
	eqerrors "github.com/vnykmshr/eventq/pkg/common/errors"
	"github.com/vnykmshr/eventq/pkg/common/validation"
	"github.com/vnykmshr/eventq/pkg/idgen"
	"github.com/vnykmshr/eventq/pkg/scheduling/workerpool"
)

const module = "eventqueue"

// ID identifies a registered event for the lifetime of the queue.
type ID string

// Callback is invoked with the event's payload once its fire time has passed.
// A returned error or a panic is reported as a CallbackFault.
type Callback func(ctx context.Context, payload any) error

// Event is a read-only view of a pending event.
type Event struct {
	ID        ID
	FireAt    time.Time
	Payload   any
	Recurring bool
}

// Stats is a point-in-time summary of queue activity.
type Stats struct {
	TotalScheduled int64
	TotalFired     int64
	TotalCanceled  int64
	TotalSkipped   int64
	TotalCompleted int64
	TotalFaults    int64
	TimerArms      int64
	Pending        int
	Tombstones     int
	InFlight       int64
	Armed          bool
	NextFire       time.Time
	UpTime         time.Duration
}

// Queue orders callbacks by fire time and runs each one at or after its time.
type Queue interface {
	// Add registers callback to run with payload at fireAt and returns a
	// generated id.
	Add(callback Callback, payload any, fireAt time.Time) (ID, error)

	// AddWithID registers an event under a caller-chosen id. It fails with
	// ErrDuplicateID while another event with the same id is pending.
	AddWithID(id ID, callback Callback, payload any, fireAt time.Time) (ID, error)

	// AddAfter registers an event to fire delay from now.
	AddAfter(callback Callback, payload any, delay time.Duration) (ID, error)

	// AddCron registers a recurring event driven by a cron expression. Each
	// occurrence is re-registered under the same id when the previous one fires.
	AddCron(expr string, callback Callback, payload any) (ID, error)

	// Cancel prevents a pending event from firing. Unknown or already fired
	// ids are ignored.
	Cancel(id ID)

	// CancelAll cancels every pending event.
	CancelAll()

	// Pending reports whether id is waiting to fire.
	Pending(id ID) bool

	// Len returns the number of pending events.
	Len() int

	// NextFireTime returns the earliest pending fire time.
	NextFireTime() (time.Time, bool)

	// List returns the pending events in firing order.
	List() []Event

	// Stats returns current queue statistics.
	Stats() Stats

	// Close drops pending events and stops the timer. The returned channel is
	// closed once every callback already handed off has returned.
	Close() <-chan struct{}
}

// PastPolicy decides what Add does with a fire time that is not in the future.
type PastPolicy int

const (
	// Permissive accepts past fire times; such events fire as soon as possible.
	Permissive PastPolicy = iota
	// Strict rejects fire times at or before now with ErrInvalidArgument.
	Strict
)

func (p PastPolicy) String() string {
	switch p {
	case Permissive:
		return "permissive"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("PastPolicy(%d)", int(p))
	}
}

// ParsePastPolicy parses "permissive" or "strict". Empty means Permissive.
func ParsePastPolicy(s string) (PastPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "permissive":
		return Permissive, nil
	case "strict":
		return Strict, nil
	default:
		return Permissive, eqerrors.NewValidationError(module, "past_policy", s, "unknown policy").
			WithHint(`use "permissive" or "strict"`)
	}
}

// Config holds queue configuration. Zero values select the defaults.
type Config struct {
	// Clock is the clock source and timer primitive (default: clock.Real()).
	Clock clock.Clock

	// Executor runs callbacks. If nil and Workers is zero, every callback runs
	// on its own goroutine. A caller-supplied pool must drain its Results
	// channel or be built with DropResults.
	Executor workerpool.Pool

	// Workers creates a queue-owned worker pool when Executor is nil.
	// The pool is shut down by Close.
	Workers int

	// QueueSize is the task queue size of the queue-owned pool.
	QueueSize int

	// PastPolicy decides whether past fire times are accepted (default: Permissive).
	PastPolicy PastPolicy

	// MaxEvents caps the number of pending events. Zero means unbounded.
	MaxEvents int

	// CallbackTimeout bounds the context passed to each callback. Zero means none.
	CallbackTimeout time.Duration

	// IDGenerator produces ids for Add (default: idgen.UUID).
	IDGenerator idgen.Generator

	// Location is used to evaluate cron expressions (default: time.Local).
	Location *time.Location

	// Logger receives queue diagnostics (default: disabled).
	Logger *zerolog.Logger

	// OnFault receives callback faults. If nil, faults are logged at error level.
	OnFault func(fault *eqerrors.CallbackFault)

	// Lifecycle hooks. Hooks other than OnEventStarted and OnEventCompleted
	// run while the queue lock is held and must not call back into the queue.
	OnEventScheduled func(ev Event)
	OnEventFired     func(ev Event, lag time.Duration)
	OnEventCanceled  func(id ID)
	OnEventSkipped   func(ev Event)
	OnTimerArmed     func(delay time.Duration)
	OnTimerDisarmed  func()

	// OnEventStarted runs on the execution context immediately before the
	// callback. Calls for successive events happen in firing order.
	OnEventStarted func(ev Event)

	// OnEventCompleted runs on the execution context after the callback returns.
	OnEventCompleted func(ev Event, took time.Duration, err error)
}

// Validate checks the configuration for out-of-range values.
func (c Config) Validate() error {
	if err := validation.ValidateNonNegative(module, "max_events", c.MaxEvents); err != nil {
		return err
	}
	if err := validation.ValidateNonNegative(module, "workers", c.Workers); err != nil {
		return err
	}
	if c.QueueSize < -1 {
		return eqerrors.NewValidationError(module, "queue_size", c.QueueSize, "must be >= -1")
	}
	if err := validation.ValidateNonNegativeDuration(module, "callback_timeout", c.CallbackTimeout); err != nil {
		return err
	}
	if c.PastPolicy != Permissive && c.PastPolicy != Strict {
		return eqerrors.NewValidationError(module, "past_policy", c.PastPolicy, "unknown policy")
	}
	return nil
}

type counters struct {
	scheduled atomic.Int64
	fired     atomic.Int64
	canceled  atomic.Int64
	skipped   atomic.Int64
	completed atomic.Int64
	faults    atomic.Int64
	arms      atomic.Int64
	inFlight  atomic.Int64
}

type queue struct {
	cfg         Config
	clock       clock.Clock
	executor    workerpool.Pool
	ownExecutor bool
	newID       idgen.Generator
	location    *time.Location
	logger      zerolog.Logger
	onFault     func(*eqerrors.CallbackFault)
	cronParser  cron.Parser
	created     time.Time

	mu     sync.Mutex
	store  *store
	timer  clock.Timer
	armed  bool
	closed bool
	done   chan struct{}

	handoff  handoff
	inflight sync.WaitGroup
	stats    counters
}

// New creates a queue with default configuration.
func New() Queue {
	q, err := NewWithConfig(Config{})
	if err != nil {
		panic(err)
	}
	return q
}

// NewWithConfig creates a queue with custom configuration.
func NewWithConfig(cfg Config) (Queue, error) {
	return newQueue(cfg)
}

func newQueue(cfg Config) (*queue, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}

	executor := cfg.Executor
	ownExecutor := false
	if executor == nil && cfg.Workers > 0 {
		executor = workerpool.NewWithConfig(workerpool.Config{
			WorkerCount: cfg.Workers,
			QueueSize:   cfg.QueueSize,
			DropResults: true,
		})
		ownExecutor = true
	}

	newID := cfg.IDGenerator
	if newID == nil {
		newID = idgen.UUID
	}

	location := cfg.Location
	if location == nil {
		location = time.Local
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", module).Logger()
	}

	q := &queue{
		cfg:         cfg,
		clock:       clk,
		executor:    executor,
		ownExecutor: ownExecutor,
		newID:       newID,
		location:    location,
		logger:      logger,
		cronParser:  cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		created:     clk.Now(),
		store:       newStore(),
		done:        make(chan struct{}),
	}

	q.onFault = cfg.OnFault
	if q.onFault == nil {
		q.onFault = q.logFault
	}

	q.store.onSkip = func(e *event) {
		q.stats.skipped.Add(1)
		q.logger.Debug().Str("event_id", string(e.id)).Msg("skipped cancelled event")
		if q.cfg.OnEventSkipped != nil {
			q.cfg.OnEventSkipped(e.view())
		}
	}

	return q, nil
}

func (q *queue) Add(callback Callback, payload any, fireAt time.Time) (ID, error) {
	return q.add(ID(q.newID()), callback, payload, fireAt, nil)
}

func (q *queue) AddWithID(id ID, callback Callback, payload any, fireAt time.Time) (ID, error) {
	if err := validation.RequireNotEmpty(module, "id", string(id)); err != nil {
		return "", err
	}
	return q.add(id, callback, payload, fireAt, nil)
}

func (q *queue) AddAfter(callback Callback, payload any, delay time.Duration) (ID, error) {
	return q.Add(callback, payload, q.clock.Now().Add(delay))
}

func (q *queue) add(id ID, callback Callback, payload any, fireAt time.Time, schedule cron.Schedule) (ID, error) {
	if err := validation.RequireNotNil(module, "callback", callback != nil); err != nil {
		return "", err
	}
	if err := validation.RequireTime(module, "fire_at", fireAt); err != nil {
		return "", err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return "", fmt.Errorf("cannot add event: queue is closed: %w", eqerrors.ErrClosed)
	}

	now := q.clock.Now()
	if q.cfg.PastPolicy == Strict {
		if err := validation.RequireAfter(module, "fire_at", fireAt, now); err != nil {
			return "", err
		}
	}

	if _, exists := q.store.lookup(id); exists {
		return "", fmt.Errorf("event %q is already pending, cancel it first or use a different id: %w", id, eqerrors.ErrDuplicateID)
	}

	if q.cfg.MaxEvents > 0 && q.store.liveLen() >= q.cfg.MaxEvents {
		return "", fmt.Errorf("cannot add event: maximum number of pending events (%d) reached: %w", q.cfg.MaxEvents, eqerrors.ErrCapacityExceeded)
	}

	e := &event{
		id:       id,
		fireAt:   fireAt,
		callback: callback,
		payload:  payload,
		schedule: schedule,
	}
	if q.insertLocked(e) {
		q.armLocked(fireAt, now)
	}

	return id, nil
}

// insertLocked adds e to the store and reports whether it became the minimum.
func (q *queue) insertLocked(e *event) bool {
	isMin := q.store.insert(e)
	q.stats.scheduled.Add(1)
	if q.cfg.OnEventScheduled != nil {
		q.cfg.OnEventScheduled(e.view())
	}
	return isMin
}

func (q *queue) Cancel(id ID) {
	q.mu.Lock()
	hit := !q.closed && q.cancelLocked(id)
	q.mu.Unlock()

	q.logger.Debug().Str("event_id", string(id)).Bool("pending", hit).Msg("cancel")
}

// cancelLocked tombstones id without touching the timer; a cancelled head
// costs at most one wasted wake-up.
func (q *queue) cancelLocked(id ID) bool {
	if !q.store.markCancelled(id) {
		return false
	}
	q.stats.canceled.Add(1)
	if q.cfg.OnEventCanceled != nil {
		q.cfg.OnEventCanceled(id)
	}
	return true
}

func (q *queue) CancelAll() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	ids := make([]ID, 0, q.store.liveLen())
	for id := range q.store.live {
		ids = append(ids, id)
	}
	for _, id := range ids {
		q.cancelLocked(id)
	}
}

func (q *queue) Pending(id ID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.store.lookup(id)
	return ok
}

func (q *queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.store.liveLen()
}

func (q *queue) NextFireTime() (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.store.peekMinFireTime()
}

func (q *queue) List() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.store.snapshot()
}

func (q *queue) Stats() Stats {
	q.mu.Lock()
	pending := q.store.liveLen()
	tombstones := q.store.tombstones()
	armed := q.armed
	next, _ := q.store.peekMinFireTime()
	q.mu.Unlock()

	return Stats{
		TotalScheduled: q.stats.scheduled.Load(),
		TotalFired:     q.stats.fired.Load(),
		TotalCanceled:  q.stats.canceled.Load(),
		TotalSkipped:   q.stats.skipped.Load(),
		TotalCompleted: q.stats.completed.Load(),
		TotalFaults:    q.stats.faults.Load(),
		TimerArms:      q.stats.arms.Load(),
		Pending:        pending,
		Tombstones:     tombstones,
		InFlight:       q.stats.inFlight.Load(),
		Armed:          armed,
		NextFire:       next,
		UpTime:         q.clock.Now().Sub(q.created),
	}
}

func (q *queue) Close() <-chan struct{} {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return q.done
	}
	q.closed = true
	dropped := q.store.liveLen()
	q.store.reset()
	q.disarmLocked()
	q.mu.Unlock()

	q.logger.Info().Int("dropped", dropped).Msg("queue closed")

	go func() {
		q.inflight.Wait()
		if q.ownExecutor {
			<-q.executor.Shutdown()
		}
		close(q.done)
	}()

	return q.done
}
