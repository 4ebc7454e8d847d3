// Package metrics provides Prometheus instrumentation for eventq components.
//
// # Overview
//
// The metrics package provides instrumentation for:
//   - Event queues (scheduled, fired, canceled, skipped events, pending gauge)
//   - Dispatch quality (fire lag, callback duration, callback faults)
//   - The shared timer (arm and disarm counts)
//   - Worker pools used as callback execution contexts
//
// # Quick Start
//
// Enable metrics by using the metrics-enabled constructors:
//
//	q := eventqueue.NewWithMetrics("retries")
//	pool := workerpool.NewWithMetrics(4, "callbacks")
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	config := metrics.Config{
//		Enabled:  true,
//		Registry: prometheus.NewRegistry(),
//	}
//	q := eventqueue.NewWithConfigAndMetrics(eventqueue.Config{}, "retries", config)
//
// # Available Metrics
//
//   - eventq_queue_events_scheduled_total
//   - eventq_queue_events_fired_total
//   - eventq_queue_events_canceled_total
//   - eventq_queue_events_skipped_total
//   - eventq_queue_events_pending
//   - eventq_queue_callback_faults_total
//   - eventq_queue_fire_lag_seconds
//   - eventq_queue_callback_duration_seconds
//   - eventq_timer_arms_total
//   - eventq_timer_disarms_total
//   - eventq_workerpool_tasks_completed_total
//   - eventq_workerpool_tasks_failed_total
//   - eventq_workerpool_size
//   - eventq_workerpool_active_workers
//   - eventq_workerpool_queued_tasks
//
// # Labels
//
//   - queue_name: User-provided name for the queue instance
//   - pool_name: User-provided name for the worker pool instance
package metrics
