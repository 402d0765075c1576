package bus

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/owulveryck/taskfabric/internal/entity"
	"github.com/owulveryck/taskfabric/internal/observability"
)

type noopSink struct{}

func (noopSink) Send(ctx context.Context, topic, key string, msg entity.Message) error { return nil }

func testBus(t *testing.T) *Bus {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	tracer := observability.NewTraceManager("bus_test")
	metrics, err := observability.NewMetricsManager(noop.NewMeterProvider().Meter("bus_test"))
	if err != nil {
		t.Fatalf("NewMetricsManager: %v", err)
	}
	b := New(Config{Workers: 2, QueueSize: 16}, noopSink{}, logger, tracer, metrics)
	b.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		b.Shutdown(ctx)
	})
	return b
}

func TestPublishDirectDelivery(t *testing.T) {
	b := testBus(t)

	received := make(chan entity.Message, 1)
	b.Subscribe("agent-1", func(ctx context.Context, msg entity.Message) {
		received <- msg
	})

	msg := entity.NewMessage("m1", "controller", "agent-1", entity.MessageKindTaskAssignment, entity.TaskAssignmentPayload{TaskID: "t1"})
	if ok := b.Publish(context.Background(), msg); !ok {
		t.Fatal("Publish returned false")
	}

	select {
	case got := <-received:
		if got.MessageID != "m1" {
			t.Fatalf("got message id %s, want m1", got.MessageID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for direct delivery")
	}
}

func TestPublishBroadcastFanOut(t *testing.T) {
	b := testBus(t)

	var count int32
	var wg sync.WaitGroup
	wg.Add(2)
	b.Subscribe("a1", func(ctx context.Context, msg entity.Message) {
		atomic.AddInt32(&count, 1)
		wg.Done()
	})
	b.Subscribe("a2", func(ctx context.Context, msg entity.Message) {
		atomic.AddInt32(&count, 1)
		wg.Done()
	})

	msg := entity.NewMessage("m2", "controller", entity.ReceiverBroadcast, entity.MessageKindSystemNotification, entity.SystemNotificationPayload{NotificationType: "pause"})
	if ok := b.Publish(context.Background(), msg); !ok {
		t.Fatal("Publish returned false")
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast fan-out")
	}

	if got := atomic.LoadInt32(&count); got != 2 {
		t.Fatalf("handler invocation count = %d, want 2", got)
	}
}

func TestPublishNoSubscribersReturnsTrue(t *testing.T) {
	b := testBus(t)
	msg := entity.NewMessage("m3", "controller", "nobody-home", entity.MessageKindTaskAssignment, entity.TaskAssignmentPayload{TaskID: "t1"})
	if ok := b.Publish(context.Background(), msg); !ok {
		t.Fatal("Publish with zero subscribers should still return true")
	}
}

func TestPublishAfterShutdownReturnsFalse(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	tracer := observability.NewTraceManager("bus_test")
	metrics, _ := observability.NewMetricsManager(noop.NewMeterProvider().Meter("bus_test_shutdown"))
	b := New(Config{Workers: 1, QueueSize: 4}, noopSink{}, logger, tracer, metrics)
	b.Start()
	if err := b.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	msg := entity.NewMessage("m4", "controller", "agent-1", entity.MessageKindTaskAssignment, entity.TaskAssignmentPayload{TaskID: "t1"})
	if ok := b.Publish(context.Background(), msg); ok {
		t.Fatal("Publish after shutdown should return false")
	}
	if b.QueueStatus().Running {
		t.Fatal("QueueStatus().Running should be false after shutdown")
	}
}

func TestUnsubscribeRemovesAllHandlersAndTopics(t *testing.T) {
	b := testBus(t)
	var calls int32
	h := func(ctx context.Context, msg entity.Message) { atomic.AddInt32(&calls, 1) }

	b.Subscribe("a1", h)
	b.SubscribeToTopic("a1", "demo-topic")
	b.Unsubscribe("a1", nil)

	status := b.QueueStatus()
	if status.Subscribers != 0 {
		t.Fatalf("Subscribers = %d, want 0 after Unsubscribe(nil)", status.Subscribers)
	}

	msg := entity.NewMessage("m5", "controller", "a1", entity.MessageKindTaskAssignment, entity.TaskAssignmentPayload{
		TaskID: "t1",
		Extra:  map[string]any{"topic": "demo-topic"},
	})
	b.Publish(context.Background(), msg)
	time.Sleep(50 * time.Millisecond)

	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("handler invoked %d times after full unsubscribe, want 0", calls)
	}
}
