package agentrt

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/owulveryck/taskfabric/internal/bus"
	"github.com/owulveryck/taskfabric/internal/entity"
	"github.com/owulveryck/taskfabric/internal/observability"
)

type fakeController struct {
	mu           sync.Mutex
	registered   bool
	unregistered bool
	statuses     []entity.TaskStatus
	results      []map[string]any
	agentStatus  entity.AgentStatus
}

func (f *fakeController) RegisterAgent(id, name string, capabilities entity.CapabilitySet, metadata map[string]any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = true
	return true
}

func (f *fakeController) UnregisterAgent(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unregistered = true
	return true
}

func (f *fakeController) SendMessage(ctx context.Context, senderID, receiverID string, kind entity.MessageKind, content any) string {
	return "m1"
}

func (f *fakeController) CreateTask(ctx context.Context, description, creatorID string, required entity.CapabilitySet, priority int, deadline *time.Time, metadata map[string]any) string {
	return "t1"
}

func (f *fakeController) UpdateTaskStatus(ctx context.Context, taskID string, status entity.TaskStatus, result map[string]any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
	f.results = append(f.results, result)
	return true
}

func (f *fakeController) SetAgentStatus(id string, status entity.AgentStatus) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.agentStatus = status
	return true
}

type fakeBus struct {
	mu       sync.Mutex
	handlers map[string]bus.Handler
}

func newFakeBus() *fakeBus { return &fakeBus{handlers: make(map[string]bus.Handler)} }

func (f *fakeBus) Subscribe(agentID string, handler bus.Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[agentID] = handler
}

func (f *fakeBus) Unsubscribe(agentID string, handler bus.Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.handlers, agentID)
}

func (f *fakeBus) deliver(ctx context.Context, agentID string, msg entity.Message) {
	f.mu.Lock()
	h := f.handlers[agentID]
	f.mu.Unlock()
	if h != nil {
		h(ctx, msg)
	}
}

func testRuntime(t *testing.T, handler TaskHandler) (*Runtime, *fakeController, *fakeBus) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	tracer := observability.NewTraceManager("agentrt_test")
	metrics, err := observability.NewMetricsManager(noop.NewMeterProvider().Meter("agentrt_test"))
	if err != nil {
		t.Fatalf("NewMetricsManager: %v", err)
	}
	fc := &fakeController{}
	fb := newFakeBus()

	rt, err := New(&Config{
		AgentID:      "a1",
		Name:         "Agent One",
		Capabilities: entity.NewCapabilitySet(entity.CapabilityTextProcessing),
	}, fc, fb, logger, tracer, metrics)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if handler != nil {
		rt.MustAddHandler(DefaultTaskKind, handler)
	}
	return rt, fc, fb
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(&Config{}, &fakeController{}, newFakeBus(), slog.Default(), observability.NewTraceManager("t"), mustMetrics(t))
	if err == nil {
		t.Fatal("expected error for missing required fields")
	}
}

func mustMetrics(t *testing.T) *observability.MetricsManager {
	t.Helper()
	m, err := observability.NewMetricsManager(noop.NewMeterProvider().Meter("t"))
	if err != nil {
		t.Fatalf("NewMetricsManager: %v", err)
	}
	return m
}

func TestRunRegistersAndSubscribes(t *testing.T) {
	rt, fc, fb := testRuntime(t, func(ctx context.Context, task TaskInfo) (map[string]any, error) {
		return map[string]any{"ok": true}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx) }()

	waitForSubscription(t, fb, "a1")

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if !fc.registered {
		t.Fatal("expected RegisterAgent to have been called")
	}
	if !fc.unregistered {
		t.Fatal("expected UnregisterAgent to have been called on shutdown")
	}
}

func TestTaskAssignmentDrivesLifecycle(t *testing.T) {
	rt, fc, fb := testRuntime(t, func(ctx context.Context, task TaskInfo) (map[string]any, error) {
		return map[string]any{"answer": "hi"}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	go rt.Run(ctx)
	defer cancel()
	waitForSubscription(t, fb, "a1")

	msg := entity.NewMessage("m1", "controller", "a1", entity.MessageKindTaskAssignment, entity.TaskAssignmentPayload{TaskID: "t1", Description: "hello"})
	fb.deliver(context.Background(), "a1", msg)

	fc.mu.Lock()
	statuses := append([]entity.TaskStatus(nil), fc.statuses...)
	fc.mu.Unlock()

	if len(statuses) != 2 || statuses[0] != entity.TaskStatusInProgress || statuses[1] != entity.TaskStatusCompleted {
		t.Fatalf("status sequence = %v, want [in_progress completed]", statuses)
	}
}

func TestTaskAssignmentFailureOnHandlerError(t *testing.T) {
	rt, fc, fb := testRuntime(t, func(ctx context.Context, task TaskInfo) (map[string]any, error) {
		return nil, errors.New("boom")
	})

	ctx, cancel := context.WithCancel(context.Background())
	go rt.Run(ctx)
	defer cancel()
	waitForSubscription(t, fb, "a1")

	msg := entity.NewMessage("m1", "controller", "a1", entity.MessageKindTaskAssignment, entity.TaskAssignmentPayload{TaskID: "t1", Description: "hello"})
	fb.deliver(context.Background(), "a1", msg)

	fc.mu.Lock()
	statuses := append([]entity.TaskStatus(nil), fc.statuses...)
	fc.mu.Unlock()

	if len(statuses) != 2 || statuses[1] != entity.TaskStatusFailed {
		t.Fatalf("status sequence = %v, want [in_progress failed]", statuses)
	}
}

func TestSystemNotificationTransitionsStatus(t *testing.T) {
	rt, fc, fb := testRuntime(t, func(ctx context.Context, task TaskInfo) (map[string]any, error) { return nil, nil })

	ctx, cancel := context.WithCancel(context.Background())
	go rt.Run(ctx)
	defer cancel()
	waitForSubscription(t, fb, "a1")

	msg := entity.NewMessage("m1", "controller", entity.ReceiverBroadcast, entity.MessageKindSystemNotification, entity.SystemNotificationPayload{NotificationType: "pause"})
	fb.deliver(context.Background(), "a1", msg)

	if got := rt.Status(); got != entity.AgentStatusPaused {
		t.Fatalf("Status() = %s, want paused", got)
	}
	fc.mu.Lock()
	reported := fc.agentStatus
	fc.mu.Unlock()
	if reported != entity.AgentStatusPaused {
		t.Fatalf("Controller-observed status = %s, want paused", reported)
	}
}

func TestMisaddressedMessageIsDropped(t *testing.T) {
	rt, _, fb := testRuntime(t, func(ctx context.Context, task TaskInfo) (map[string]any, error) { return nil, nil })

	ctx, cancel := context.WithCancel(context.Background())
	go rt.Run(ctx)
	defer cancel()
	waitForSubscription(t, fb, "a1")

	msg := entity.NewMessage("m1", "controller", "someone-else", entity.MessageKindTaskAssignment, entity.TaskAssignmentPayload{TaskID: "t1"})
	fb.deliver(context.Background(), "a1", msg)

	if got := rt.Status(); got != entity.AgentStatusActive {
		t.Fatalf("Status() = %s, want still active (message should have been dropped)", got)
	}
}

func waitForSubscription(t *testing.T, fb *fakeBus, agentID string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		fb.mu.Lock()
		_, ok := fb.handlers[agentID]
		fb.mu.Unlock()
		if ok {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s to subscribe", agentID)
}
