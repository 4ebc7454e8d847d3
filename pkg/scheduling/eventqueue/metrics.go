package eventqueue

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/eventq/pkg/metrics"
)

// MetricsQueue wraps a Queue with Prometheus metrics collection.
type MetricsQueue struct {
	Queue
	name     string
	registry *metrics.Registry
}

// NewWithMetrics creates a queue with default configuration and metrics
// recorded into a private registry.
func NewWithMetrics(name string) (Queue, error) {
	return NewWithConfigAndMetrics(Config{}, name, metrics.Config{
		Enabled:  true,
		Registry: prometheus.NewRegistry(),
	})
}

// NewWithConfigAndMetrics creates a queue with custom config and metrics.
// User hooks in config still run after the metrics hooks.
func NewWithConfigAndMetrics(config Config, name string, metricsConfig metrics.Config) (Queue, error) {
	registry := metricsConfig.Resolve()
	if registry == nil {
		return NewWithConfig(config)
	}

	mq := &MetricsQueue{
		name:     name,
		registry: registry,
	}

	pending := registry.EventsPending.WithLabelValues(name)

	onScheduled := config.OnEventScheduled
	config.OnEventScheduled = func(ev Event) {
		registry.EventsScheduled.WithLabelValues(name).Inc()
		pending.Inc()
		if onScheduled != nil {
			onScheduled(ev)
		}
	}

	onFired := config.OnEventFired
	config.OnEventFired = func(ev Event, lag time.Duration) {
		registry.EventsFired.WithLabelValues(name).Inc()
		registry.FireLag.WithLabelValues(name).Observe(lag.Seconds())
		pending.Dec()
		if onFired != nil {
			onFired(ev, lag)
		}
	}

	onCanceled := config.OnEventCanceled
	config.OnEventCanceled = func(id ID) {
		registry.EventsCanceled.WithLabelValues(name).Inc()
		pending.Dec()
		if onCanceled != nil {
			onCanceled(id)
		}
	}

	onSkipped := config.OnEventSkipped
	config.OnEventSkipped = func(ev Event) {
		registry.EventsSkipped.WithLabelValues(name).Inc()
		if onSkipped != nil {
			onSkipped(ev)
		}
	}

	onCompleted := config.OnEventCompleted
	config.OnEventCompleted = func(ev Event, took time.Duration, err error) {
		registry.CallbackTime.WithLabelValues(name).Observe(took.Seconds())
		if err != nil {
			registry.CallbackFaults.WithLabelValues(name).Inc()
		}
		if onCompleted != nil {
			onCompleted(ev, took, err)
		}
	}

	onArmed := config.OnTimerArmed
	config.OnTimerArmed = func(delay time.Duration) {
		registry.TimerArms.WithLabelValues(name).Inc()
		if onArmed != nil {
			onArmed(delay)
		}
	}

	onDisarmed := config.OnTimerDisarmed
	config.OnTimerDisarmed = func() {
		registry.TimerDisarms.WithLabelValues(name).Inc()
		if onDisarmed != nil {
			onDisarmed()
		}
	}

	q, err := NewWithConfig(config)
	if err != nil {
		return nil, err
	}
	mq.Queue = q

	return mq, nil
}

// Close closes the underlying queue and zeroes the pending gauge.
func (mq *MetricsQueue) Close() <-chan struct{} {
	done := mq.Queue.Close()
	mq.registry.EventsPending.WithLabelValues(mq.name).Set(0)
	return done
}

// Registry returns the metrics registry the queue records into.
func (mq *MetricsQueue) Registry() *metrics.Registry {
	return mq.registry
}
