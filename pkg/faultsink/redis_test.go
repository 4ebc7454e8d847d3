package faultsink

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/vnykmshr/eventq/internal/testutil"
	eqerrors "github.com/vnykmshr/eventq/pkg/common/errors"
)

func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("EVENTQ_REDIS_ADDR")
	if addr == "" {
		t.Skip("EVENTQ_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
	return rdb
}

func TestNewRedis_Validation(t *testing.T) {
	_, err := NewRedis(nil, RedisConfig{})
	if !errors.Is(err, eqerrors.ErrInvalidArgument) {
		t.Errorf("nil client error = %v, want ErrInvalidArgument", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer rdb.Close()

	_, err = NewRedis(rdb, RedisConfig{MaxLen: -1})
	if !errors.Is(err, eqerrors.ErrInvalidConfiguration) {
		t.Errorf("negative MaxLen error = %v, want ErrInvalidConfiguration", err)
	}

	sink, err := NewRedis(rdb, RedisConfig{})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, sink.Stream(), "eventq:faults")
}

func TestRedisSink_WriteFailure(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	sink, err := NewRedis(rdb, RedisConfig{Timeout: 200 * time.Millisecond, Logger: &logger})
	testutil.AssertNoError(t, err)

	err = sink.Write(context.Background(), errorFault("unreachable"))
	var opErr *eqerrors.OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("Write error = %v, want OperationError", err)
	}

	sink.Handle(errorFault("unreachable"))
	if !bytes.Contains(buf.Bytes(), []byte("failed to record fault")) {
		t.Errorf("write failure not logged: %s", buf.String())
	}
}

func TestRedisSink_AppendsToStream(t *testing.T) {
	rdb := redisClient(t)
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	stream := "eventq:test:" + xid.New().String()
	t.Cleanup(func() { rdb.Del(context.Background(), stream) })

	sink, err := NewRedis(rdb, RedisConfig{Stream: stream, MaxLen: 100})
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, sink.Write(ctx, errorFault("evt-1")))
	sink.Handle(eqerrors.NewPanicFault("evt-2", fireAt, "kaboom", []byte("stack")))

	msgs, err := rdb.XRange(ctx, stream, "-", "+").Result()
	testutil.AssertNoError(t, err)
	if len(msgs) != 2 {
		t.Fatalf("stream has %d entries, want 2", len(msgs))
	}
	testutil.AssertEqual(t, msgs[0].Values["event_id"], any("evt-1"))
	testutil.AssertEqual(t, msgs[0].Values["error"], any("boom"))
	testutil.AssertEqual(t, msgs[0].Values["panic"], any("false"))
	testutil.AssertEqual(t, msgs[1].Values["panic"], any("true"))
	testutil.AssertEqual(t, msgs[1].Values["stack"], any("stack"))
	testutil.AssertEqual(t, msgs[0].Values["fire_at"], any(fireAt.Format(time.RFC3339Nano)))
}
