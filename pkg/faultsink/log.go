package faultsink

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	eqerrors "github.com/vnykmshr/eventq/pkg/common/errors"
)

// Handler receives callback faults. It has the type of eventqueue.Config.OnFault.
type Handler func(fault *eqerrors.CallbackFault)

// Multi returns a Handler that calls each non-nil handler in order.
func Multi(handlers ...Handler) Handler {
	hs := make([]Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			hs = append(hs, h)
		}
	}
	return func(fault *eqerrors.CallbackFault) {
		for _, h := range hs {
			h(fault)
		}
	}
}

// LogSink logs faults at error level, at most perSecond lines per second.
type LogSink struct {
	logger  zerolog.Logger
	limiter *rate.Limiter

	pending    atomic.Int64 // suppressed since the last logged line
	suppressed atomic.Int64
}

// Log creates a LogSink. perSecond <= 0 disables throttling.
func Log(logger zerolog.Logger, perSecond float64) *LogSink {
	limit := rate.Inf
	burst := 1
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		if int(perSecond) > burst {
			burst = int(perSecond)
		}
	}
	return &LogSink{
		logger:  logger,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Handle logs fault unless the rate limit is exhausted.
func (s *LogSink) Handle(fault *eqerrors.CallbackFault) {
	if fault == nil {
		return
	}
	if !s.limiter.Allow() {
		s.pending.Add(1)
		s.suppressed.Add(1)
		return
	}

	ev := s.logger.Error().
		Err(fault.Err).
		Str("event_id", fault.EventID).
		Time("fire_at", fault.FireAt)
	if n := s.pending.Swap(0); n > 0 {
		ev = ev.Int64("suppressed", n)
	}
	if fault.IsPanic() {
		ev = ev.Str("panic", fmt.Sprint(fault.Panic)).Bytes("stack", fault.Stack)
	}
	ev.Msg("callback fault")
}

// Suppressed returns the total number of faults dropped by throttling.
func (s *LogSink) Suppressed() int64 {
	return s.suppressed.Load()
}
