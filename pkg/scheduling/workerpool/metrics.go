package workerpool

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vnykmshr/eventq/pkg/metrics"
)

// MetricsPool wraps a worker Pool with Prometheus metrics collection.
type MetricsPool struct {
	Pool
	name     string
	registry *metrics.Registry
}

// NewWithMetrics creates a new worker pool with metrics enabled.
// Results are dropped; completion is observed through metrics only.
func NewWithMetrics(workerCount int, name string) Pool {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	config := metrics.Config{
		Enabled:  true,
		Registry: prometheus.NewRegistry(),
	}

	return NewWithConfigAndMetrics(Config{
		WorkerCount: workerCount,
		DropResults: true,
	}, name, config)
}

// NewWithConfigAndMetrics creates a new worker pool with custom config and metrics.
func NewWithConfigAndMetrics(config Config, name string, metricsConfig metrics.Config) Pool {
	registry := metricsConfig.Resolve()
	if registry == nil {
		return NewWithConfig(config)
	}

	mp := &MetricsPool{
		name:     name,
		registry: registry,
	}

	// Wrap the completion hook so every result is counted
	original := config.OnTaskComplete
	config.OnTaskComplete = func(workerID int, result Result) {
		if result.Error != nil {
			registry.TasksFailed.WithLabelValues(name).Inc()
		} else {
			registry.TasksCompleted.WithLabelValues(name).Inc()
		}
		mp.updateGauges()
		if original != nil {
			original(workerID, result)
		}
	}

	mp.Pool = NewWithConfig(config)
	mp.updateGauges()

	return mp
}

// updateGauges updates the current state metrics.
func (mp *MetricsPool) updateGauges() {
	if mp.Pool == nil {
		return
	}
	mp.registry.WorkerPoolSize.WithLabelValues(mp.name).Set(float64(mp.Pool.Size()))
	mp.registry.WorkerPoolActive.WithLabelValues(mp.name).Set(float64(mp.Pool.ActiveWorkers()))
	mp.registry.WorkerPoolQueued.WithLabelValues(mp.name).Set(float64(mp.Pool.QueueSize()))
}

// Submit adds a task to the pool for execution.
func (mp *MetricsPool) Submit(task Task) error {
	return mp.SubmitWithContext(context.Background(), task)
}

// SubmitWithContext submits a task and refreshes the pool gauges.
func (mp *MetricsPool) SubmitWithContext(ctx context.Context, task Task) error {
	err := mp.Pool.SubmitWithContext(ctx, task)
	mp.updateGauges()
	return err
}

// Registry returns the metrics registry the pool records into.
func (mp *MetricsPool) Registry() *metrics.Registry {
	return mp.registry
}
