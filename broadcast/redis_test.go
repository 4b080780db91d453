package broadcast_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"

	"github.com/kouellette/rcv/broadcast"
	"github.com/kouellette/rcv/tabulator"
)

func startRedis(t *testing.T) (string, func()) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("could not connect to docker: %s", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7",
	})
	if err != nil {
		t.Fatalf("could not start redis container: %s", err)
	}
	addr := fmt.Sprintf("localhost:%s", resource.GetPort("6379/tcp"))

	if err := pool.Retry(func() error {
		sink := broadcast.NewRedis(addr, "probe")
		defer sink.Close()
		return sink.Publish(context.Background(), tabulator.Event{Kind: tabulator.EventRoundStarted, Round: 0})
	}); err != nil {
		t.Fatalf("redis never became ready: %s", err)
	}

	return addr, func() {
		if err := pool.Purge(resource); err != nil {
			t.Fatalf("could not purge redis container: %s", err)
		}
	}
}

func TestPublishAndSubscribeRoundTrips(t *testing.T) {
	if testing.Short() {
		t.Skip("skip redis test")
	}

	addr, cleanup := startRedis(t)
	defer cleanup()

	sink := broadcast.NewRedis(addr, "contest-1")
	defer sink.Close()

	received := make(chan tabulator.Event, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go func() {
		_ = sink.Subscribe(ctx, func(e tabulator.Event) {
			received <- e
		})
	}()

	time.Sleep(200 * time.Millisecond) // let the subscription establish
	if err := sink.Publish(context.Background(), tabulator.Event{Kind: tabulator.EventRoundCompleted, Round: 3}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case e := <-received:
		if e.Round != 3 || e.Kind != tabulator.EventRoundCompleted {
			t.Fatalf("received event = %+v, want round 3 round_completed", e)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for published event")
	}
}
