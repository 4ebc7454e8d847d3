/*
Package faultsink provides handlers for callback faults reported by an event
queue.

Log writes faults through zerolog and throttles bursts with a token bucket,
counting the lines it suppressed:

	sink := faultsink.Log(logger, 5) // at most ~5 fault lines per second
	q, err := eventqueue.NewWithConfig(eventqueue.Config{OnFault: sink.Handle})

Redis appends each fault to a capped Redis stream so other processes can
inspect failures:

	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	rs, err := faultsink.NewRedis(rdb, faultsink.RedisConfig{Stream: "reminders:faults"})

Multi fans a fault out to several handlers:

	q, err := eventqueue.NewWithConfig(eventqueue.Config{
		OnFault: faultsink.Multi(sink.Handle, rs.Handle),
	})
*/
package faultsink
