// Package integration contains integration tests that verify cross-package functionality.
// These tests run components together on the real clock.
package integration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/vnykmshr/eventq/internal/testutil"
	eqerrors "github.com/vnykmshr/eventq/pkg/common/errors"
	"github.com/vnykmshr/eventq/pkg/faultsink"
	"github.com/vnykmshr/eventq/pkg/idgen"
	"github.com/vnykmshr/eventq/pkg/metrics"
	"github.com/vnykmshr/eventq/pkg/scheduling/eventqueue"
	"github.com/vnykmshr/eventq/pkg/scheduling/workerpool"
)

// TestQueueOnMetricsPool runs an event queue on an instrumented worker pool and
// checks that both record the same callbacks.
func TestQueueOnMetricsPool(t *testing.T) {
	reg := prometheus.NewRegistry()
	mcfg := metrics.Config{Enabled: true, Registry: reg}

	pool := workerpool.NewWithConfigAndMetrics(workerpool.Config{
		WorkerCount: 3,
		QueueSize:   32,
		DropResults: true,
	}, "callbacks", mcfg)
	defer func() { <-pool.Shutdown() }()

	var faults []*eqerrors.CallbackFault
	var faultsMu sync.Mutex
	sink := faultsink.Log(zerolog.Nop(), 0)

	q, err := eventqueue.NewWithConfigAndMetrics(eventqueue.Config{
		Executor:    pool,
		IDGenerator: idgen.XID,
		OnFault: faultsink.Multi(sink.Handle, func(f *eqerrors.CallbackFault) {
			faultsMu.Lock()
			faults = append(faults, f)
			faultsMu.Unlock()
		}),
	}, "reminders", mcfg)
	testutil.AssertNoError(t, err)

	var ran int32
	ok := func(context.Context, any) error {
		atomic.AddInt32(&ran, 1)
		return nil
	}

	now := time.Now()
	for i := 0; i < 10; i++ {
		_, err := q.Add(ok, i, now.Add(time.Duration(i*5)*time.Millisecond))
		testutil.AssertNoError(t, err)
	}
	cancelled, err := q.AddAfter(ok, "cancelled", 20*time.Millisecond)
	testutil.AssertNoError(t, err)
	q.Cancel(cancelled)

	_, err = q.AddWithID("broken", func(context.Context, any) error {
		return errors.New("downstream refused")
	}, nil, now.Add(30*time.Millisecond))
	testutil.AssertNoError(t, err)

	testutil.WaitForInt32(t, &ran, 10, testutil.TestTimeout)
	testutil.Eventually(t, func() bool { return q.Stats().TotalFaults == 1 }, testutil.TestTimeout, time.Millisecond)
	testutil.WaitClosed(t, q.Close(), testutil.TestTimeout)

	faultsMu.Lock()
	testutil.AssertEqual(t, len(faults), 1)
	testutil.AssertEqual(t, faults[0].EventID, "broken")
	faultsMu.Unlock()

	r := q.(*eventqueue.MetricsQueue).Registry()
	testutil.AssertEqual(t, promtest.ToFloat64(r.EventsFired.WithLabelValues("reminders")), 11.0)
	testutil.AssertEqual(t, promtest.ToFloat64(r.EventsCanceled.WithLabelValues("reminders")), 1.0)
	testutil.AssertEqual(t, promtest.ToFloat64(r.CallbackFaults.WithLabelValues("reminders")), 1.0)

	<-pool.Shutdown()

	// Queue callbacks report success to the pool; faults are the queue's concern.
	testutil.AssertEqual(t, promtest.ToFloat64(r.TasksCompleted.WithLabelValues("callbacks")), 11.0)
	testutil.AssertEqual(t, promtest.ToFloat64(r.TasksFailed.WithLabelValues("callbacks")), 0.0)
}

// TestCronOnRealClock checks that a recurring event fires repeatedly until
// cancelled.
func TestCronOnRealClock(t *testing.T) {
	q, err := eventqueue.NewWithConfig(eventqueue.Config{Workers: 1})
	testutil.AssertNoError(t, err)
	defer func() { testutil.WaitClosed(t, q.Close(), testutil.TestTimeout) }()

	var ticks int32
	id, err := q.AddCron("@every 1s", func(context.Context, any) error {
		atomic.AddInt32(&ticks, 1)
		return nil
	}, nil)
	testutil.AssertNoError(t, err)

	testutil.Eventually(t, func() bool { return atomic.LoadInt32(&ticks) >= 2 }, 4*time.Second, 10*time.Millisecond)
	q.Cancel(id)
	testutil.AssertEqual(t, q.Len(), 0)
}
