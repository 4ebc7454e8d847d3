package faultsink

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	eqerrors "github.com/vnykmshr/eventq/pkg/common/errors"
	"github.com/vnykmshr/eventq/pkg/common/validation"
)

const module = "faultsink"

// RedisConfig configures a RedisSink.
type RedisConfig struct {
	// Stream is the stream key (default: "eventq:faults").
	Stream string

	// MaxLen caps the stream length with approximate trimming (default: 10000).
	MaxLen int64

	// Timeout bounds each XADD issued by Handle (default: 2s).
	Timeout time.Duration

	// Logger receives write failures (default: disabled).
	Logger *zerolog.Logger
}

// RedisSink appends faults to a Redis stream.
type RedisSink struct {
	client redis.UniversalClient
	config RedisConfig
	logger zerolog.Logger
}

// NewRedis creates a RedisSink writing through client.
func NewRedis(client redis.UniversalClient, config RedisConfig) (*RedisSink, error) {
	if err := validation.RequireNotNil(module, "client", client != nil); err != nil {
		return nil, err
	}
	if config.MaxLen < 0 {
		return nil, eqerrors.NewValidationError(module, "max_len", config.MaxLen, "cannot be negative")
	}
	if err := validation.ValidateNonNegativeDuration(module, "timeout", config.Timeout); err != nil {
		return nil, err
	}

	if config.Stream == "" {
		config.Stream = "eventq:faults"
	}
	if config.MaxLen == 0 {
		config.MaxLen = 10000
	}
	if config.Timeout == 0 {
		config.Timeout = 2 * time.Second
	}

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	return &RedisSink{client: client, config: config, logger: logger}, nil
}

// Handle writes fault to the stream. Write failures are logged, not returned.
func (s *RedisSink) Handle(fault *eqerrors.CallbackFault) {
	if fault == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()

	if err := s.Write(ctx, fault); err != nil {
		s.logger.Warn().Err(err).Str("event_id", fault.EventID).Msg("failed to record fault")
	}
}

// Write appends fault to the stream and returns the Redis error, if any.
func (s *RedisSink) Write(ctx context.Context, fault *eqerrors.CallbackFault) error {
	values := map[string]interface{}{
		"event_id": fault.EventID,
		"fire_at":  fault.FireAt.Format(time.RFC3339Nano),
		"panic":    strconv.FormatBool(fault.IsPanic()),
	}
	if fault.Err != nil {
		values["error"] = fault.Err.Error()
	}
	if fault.IsPanic() {
		values["stack"] = string(fault.Stack)
	}

	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.config.Stream,
		MaxLen: s.config.MaxLen,
		Approx: true,
		Values: values,
	}).Err()
	if err != nil {
		return eqerrors.NewOperationError(module, "XAdd", err).WithContext(s.config.Stream)
	}
	return nil
}

// Stream returns the stream key faults are written to.
func (s *RedisSink) Stream() string {
	return s.config.Stream
}
