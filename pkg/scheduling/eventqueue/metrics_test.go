package eventqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vnykmshr/eventq/internal/testutil"
	"github.com/vnykmshr/eventq/pkg/metrics"
)

func TestNewWithConfigAndMetrics(t *testing.T) {
	clk := testutil.NewMockClock(epoch)
	reg := prometheus.NewRegistry()

	var userHook int
	q, err := NewWithConfigAndMetrics(Config{
		Clock:            clk,
		Workers:          1,
		OnEventScheduled: func(Event) { userHook++ },
	}, "jobs", metrics.Config{Enabled: true, Registry: reg})
	testutil.AssertNoError(t, err)

	mq, ok := q.(*MetricsQueue)
	if !ok {
		t.Fatalf("queue type = %T, want *MetricsQueue", q)
	}
	r := mq.Registry()
	rec := &recorder{}

	a, _ := q.Add(rec.callback, "a", epoch.Add(time.Second))
	_, _ = q.Add(rec.callback, "b", epoch.Add(2*time.Second))
	_, _ = q.Add(func(context.Context, any) error { return errors.New("fail") }, nil, epoch.Add(2*time.Second))
	_, _ = q.Add(rec.callback, "later", epoch.Add(time.Hour))
	q.Cancel(a)

	testutil.AssertEqual(t, userHook, 4)
	testutil.AssertEqual(t, promtest.ToFloat64(r.EventsScheduled.WithLabelValues("jobs")), 4.0)
	testutil.AssertEqual(t, promtest.ToFloat64(r.EventsCanceled.WithLabelValues("jobs")), 1.0)
	testutil.AssertEqual(t, promtest.ToFloat64(r.EventsPending.WithLabelValues("jobs")), 3.0)

	clk.Advance(2 * time.Second)
	testutil.Eventually(t, func() bool {
		return promtest.ToFloat64(r.CallbackFaults.WithLabelValues("jobs")) == 1
	}, testutil.TestTimeout, time.Millisecond)

	testutil.AssertEqual(t, promtest.ToFloat64(r.EventsFired.WithLabelValues("jobs")), 2.0)
	testutil.AssertEqual(t, promtest.ToFloat64(r.EventsSkipped.WithLabelValues("jobs")), 1.0)
	testutil.AssertEqual(t, promtest.ToFloat64(r.EventsPending.WithLabelValues("jobs")), 1.0)
	if promtest.ToFloat64(r.TimerArms.WithLabelValues("jobs")) < 2 {
		t.Error("expected the timer to be armed at least twice")
	}

	testutil.WaitClosed(t, q.Close(), testutil.TestTimeout)
	testutil.AssertEqual(t, promtest.ToFloat64(r.EventsPending.WithLabelValues("jobs")), 0.0)

	count, err := promtest.GatherAndCount(reg, "eventq_queue_fire_lag_seconds", "eventq_queue_callback_duration_seconds")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, count, 2)
}

func TestNewWithConfigAndMetrics_Disabled(t *testing.T) {
	q, err := NewWithConfigAndMetrics(Config{}, "off", metrics.Config{Enabled: false})
	testutil.AssertNoError(t, err)
	if _, ok := q.(*MetricsQueue); ok {
		t.Error("disabled metrics should return a plain queue")
	}
	testutil.WaitClosed(t, q.Close(), testutil.TestTimeout)
}

func TestNewWithMetrics_Disarm(t *testing.T) {
	q, err := NewWithMetrics("private")
	testutil.AssertNoError(t, err)
	r := q.(*MetricsQueue).Registry()

	id, err := q.AddAfter(func(context.Context, any) error { return nil }, nil, time.Hour)
	testutil.AssertNoError(t, err)
	q.Cancel(id)
	testutil.AssertEqual(t, promtest.ToFloat64(r.TimerArms.WithLabelValues("private")), 1.0)

	testutil.WaitClosed(t, q.Close(), testutil.TestTimeout)
	testutil.AssertEqual(t, promtest.ToFloat64(r.TimerDisarms.WithLabelValues("private")), 1.0)
}
