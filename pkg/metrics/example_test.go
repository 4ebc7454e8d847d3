package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

// Example_customRegistry demonstrates using a custom Prometheus registry.
func Example_customRegistry() {
	config := Config{
		Enabled:  true,
		Registry: prometheus.NewRegistry(),
	}

	registry := config.Resolve()
	registry.EventsScheduled.WithLabelValues("retries").Add(3)
	registry.EventsFired.WithLabelValues("retries").Inc()

	fmt.Printf("scheduled=%v fired=%v\n",
		promtest.ToFloat64(registry.EventsScheduled.WithLabelValues("retries")),
		promtest.ToFloat64(registry.EventsFired.WithLabelValues("retries")))

	// Output:
	// scheduled=3 fired=1
}

// Example_metricsServer demonstrates setting up a metrics HTTP server.
func Example_metricsServer() {
	// In a real application, you would start a metrics server:
	//
	// http.Handle("/metrics", promhttp.Handler())
	// log.Fatal(http.ListenAndServe(":8080", nil))
	//
	// Available metrics include:
	// - eventq_queue_events_pending{queue_name="retries"}
	// - eventq_queue_fire_lag_seconds{queue_name="retries"}
	// - eventq_timer_arms_total{queue_name="retries"}
	// - eventq_workerpool_active_workers{pool_name="callbacks"}

	fmt.Println("Metrics available at /metrics endpoint")

	// Output:
	// Metrics available at /metrics endpoint
}
