// Package metrics provides Prometheus instrumentation for eventq components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for eventq components.
type Registry struct {
	// Event Queue Metrics
	EventsScheduled *prometheus.CounterVec
	EventsFired     *prometheus.CounterVec
	EventsCanceled  *prometheus.CounterVec
	EventsSkipped   *prometheus.CounterVec
	EventsPending   *prometheus.GaugeVec
	CallbackFaults  *prometheus.CounterVec
	FireLag         *prometheus.HistogramVec
	CallbackTime    *prometheus.HistogramVec
	TimerArms       *prometheus.CounterVec
	TimerDisarms    *prometheus.CounterVec

	// Worker Pool Metrics
	TasksCompleted   *prometheus.CounterVec
	TasksFailed      *prometheus.CounterVec
	WorkerPoolSize   *prometheus.GaugeVec
	WorkerPoolActive *prometheus.GaugeVec
	WorkerPoolQueued *prometheus.GaugeVec
}

// DefaultRegistry is the default metrics registry used by eventq components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		EventsScheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventq",
				Subsystem: "queue",
				Name:      "events_scheduled_total",
				Help:      "Total number of events inserted into the pending set",
			},
			[]string{"queue_name"},
		),

		EventsFired: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventq",
				Subsystem: "queue",
				Name:      "events_fired_total",
				Help:      "Total number of events handed to the execution context",
			},
			[]string{"queue_name"},
		),

		EventsCanceled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventq",
				Subsystem: "queue",
				Name:      "events_canceled_total",
				Help:      "Total number of cancellations that hit a pending event",
			},
			[]string{"queue_name"},
		),

		EventsSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventq",
				Subsystem: "queue",
				Name:      "events_skipped_total",
				Help:      "Total number of cancelled events purged by the dispatcher",
			},
			[]string{"queue_name"},
		),

		EventsPending: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "eventq",
				Subsystem: "queue",
				Name:      "events_pending",
				Help:      "Number of live events waiting for their fire time",
			},
			[]string{"queue_name"},
		),

		CallbackFaults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventq",
				Subsystem: "queue",
				Name:      "callback_faults_total",
				Help:      "Total number of callbacks that returned an error or panicked",
			},
			[]string{"queue_name"},
		),

		FireLag: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "eventq",
				Subsystem: "queue",
				Name:      "fire_lag_seconds",
				Help:      "Delay between an event's fire time and its dispatch",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"queue_name"},
		),

		CallbackTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "eventq",
				Subsystem: "queue",
				Name:      "callback_duration_seconds",
				Help:      "Time spent executing callbacks",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"queue_name"},
		),

		TimerArms: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventq",
				Subsystem: "timer",
				Name:      "arms_total",
				Help:      "Total number of times the queue timer was armed",
			},
			[]string{"queue_name"},
		),

		TimerDisarms: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventq",
				Subsystem: "timer",
				Name:      "disarms_total",
				Help:      "Total number of times the queue timer was disarmed",
			},
			[]string{"queue_name"},
		),

		TasksCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventq",
				Subsystem: "workerpool",
				Name:      "tasks_completed_total",
				Help:      "Total number of tasks completed successfully",
			},
			[]string{"pool_name"},
		),

		TasksFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventq",
				Subsystem: "workerpool",
				Name:      "tasks_failed_total",
				Help:      "Total number of tasks that failed",
			},
			[]string{"pool_name"},
		),

		WorkerPoolSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "eventq",
				Subsystem: "workerpool",
				Name:      "size",
				Help:      "Current worker pool size",
			},
			[]string{"pool_name"},
		),

		WorkerPoolActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "eventq",
				Subsystem: "workerpool",
				Name:      "active_workers",
				Help:      "Number of active workers",
			},
			[]string{"pool_name"},
		),

		WorkerPoolQueued: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "eventq",
				Subsystem: "workerpool",
				Name:      "queued_tasks",
				Help:      "Number of queued tasks",
			},
			[]string{"pool_name"},
		),
	}
}
