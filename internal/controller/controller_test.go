package controller

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/owulveryck/taskfabric/internal/entity"
	"github.com/owulveryck/taskfabric/internal/observability"
)

type recordingBus struct {
	mu   sync.Mutex
	msgs []entity.Message
}

func (r *recordingBus) Publish(ctx context.Context, msg entity.Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return true
}

func (r *recordingBus) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func testController(t *testing.T) (*Controller, *recordingBus) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	tracer := observability.NewTraceManager("controller_test")
	metrics, err := observability.NewMetricsManager(noop.NewMeterProvider().Meter("controller_test"))
	if err != nil {
		t.Fatalf("NewMetricsManager: %v", err)
	}
	bus := &recordingBus{}
	return New(bus, logger, tracer, metrics), bus
}

func TestRegisterAgentRejectsDuplicate(t *testing.T) {
	c, _ := testController(t)
	if ok := c.RegisterAgent("a1", "Agent One", entity.NewCapabilitySet(entity.CapabilityTextProcessing), nil); !ok {
		t.Fatal("first registration should succeed")
	}
	if ok := c.RegisterAgent("a1", "Agent One Again", entity.NewCapabilitySet(), nil); ok {
		t.Fatal("duplicate registration should fail")
	}
}

func TestRegisterUnregisterRoundTrip(t *testing.T) {
	c, _ := testController(t)
	c.RegisterAgent("a1", "Agent One", entity.NewCapabilitySet(entity.CapabilityTextProcessing, entity.CapabilityReasoning), nil)

	if got := c.GetAgentsByCapability(entity.CapabilityTextProcessing); len(got) != 1 || got[0] != "a1" {
		t.Fatalf("GetAgentsByCapability = %v, want [a1]", got)
	}

	if ok := c.UnregisterAgent("a1"); !ok {
		t.Fatal("UnregisterAgent should succeed")
	}
	if got := c.GetAgentsByCapability(entity.CapabilityTextProcessing); len(got) != 0 {
		t.Fatalf("routing not cleared after unregister: %v", got)
	}
	if _, exists := c.GetAgent("a1"); exists {
		t.Fatal("agent should be gone from registry")
	}
}

// Scenario 1 from spec section 8: register a1, create a matching task,
// expect pending->assigned with exactly one task_assignment message.
func TestCreateTaskAssignsToCapableAgent(t *testing.T) {
	c, bus := testController(t)
	c.RegisterAgent("a1", "Agent One", entity.NewCapabilitySet(entity.CapabilityTextProcessing, entity.CapabilityReasoning), nil)

	taskID := c.CreateTask(context.Background(), "hello", "u1", entity.NewCapabilitySet(entity.CapabilityTextProcessing), 1, nil, map[string]any{"task_type": "qa"})
	if taskID == "" {
		t.Fatal("CreateTask returned empty id")
	}

	task, exists := c.GetTask(taskID)
	if !exists {
		t.Fatal("task not found after creation")
	}
	if task.Status != entity.TaskStatusAssigned {
		t.Fatalf("status = %s, want assigned", task.Status)
	}
	if task.AssignedAgentID != "a1" {
		t.Fatalf("assignedAgentId = %s, want a1", task.AssignedAgentID)
	}

	var assignments int
	for _, m := range bus.msgs {
		if m.Kind == entity.MessageKindTaskAssignment {
			assignments++
		}
	}
	if assignments != 1 {
		t.Fatalf("task_assignment messages = %d, want 1", assignments)
	}
}

// Scenario 2: terminal UpdateTaskStatus emits exactly one task_result
// message to the task's creator.
func TestUpdateTaskStatusTerminalEmitsResult(t *testing.T) {
	c, bus := testController(t)
	c.RegisterAgent("a1", "Agent One", entity.NewCapabilitySet(entity.CapabilityTextProcessing), nil)
	taskID := c.CreateTask(context.Background(), "hello", "u1", entity.NewCapabilitySet(entity.CapabilityTextProcessing), 1, nil, nil)

	if ok := c.UpdateTaskStatus(context.Background(), taskID, entity.TaskStatusInProgress, nil); !ok {
		t.Fatal("assigned->in_progress should be legal")
	}
	if ok := c.UpdateTaskStatus(context.Background(), taskID, entity.TaskStatusCompleted, map[string]any{"answer": "hi"}); !ok {
		t.Fatal("in_progress->completed should be legal")
	}

	task, _ := c.GetTask(taskID)
	if task.Status != entity.TaskStatusCompleted {
		t.Fatalf("status = %s, want completed", task.Status)
	}

	var results int
	for _, m := range bus.msgs {
		if m.Kind == entity.MessageKindTaskResult {
			results++
			p, ok := m.Content.(entity.TaskResultPayload)
			if !ok {
				t.Fatalf("task_result content has wrong type: %T", m.Content)
			}
			if p.TaskID != taskID || p.Status != entity.TaskStatusCompleted {
				t.Fatalf("task_result payload = %+v", p)
			}
			if m.ReceiverID != "u1" {
				t.Fatalf("task_result receiver = %s, want u1", m.ReceiverID)
			}
		}
	}
	if results != 1 {
		t.Fatalf("task_result messages = %d, want 1", results)
	}
}

// Scenario 3: a required capability no agent has leaves the task
// pending with zero task_assignment messages.
func TestCreateTaskNoMatchStaysPending(t *testing.T) {
	c, bus := testController(t)
	taskID := c.CreateTask(context.Background(), "generate code", "u1", entity.NewCapabilitySet(entity.CapabilityCodeGeneration), 1, nil, nil)

	task, exists := c.GetTask(taskID)
	if !exists {
		t.Fatal("task not found")
	}
	if task.Status != entity.TaskStatusPending {
		t.Fatalf("status = %s, want pending", task.Status)
	}

	for _, m := range bus.msgs {
		if m.Kind == entity.MessageKindTaskAssignment {
			t.Fatal("unexpected task_assignment message with no capable agent")
		}
	}
}

func TestAssignTaskOnNonPendingTaskIsNoOp(t *testing.T) {
	c, _ := testController(t)
	c.RegisterAgent("a1", "Agent One", entity.NewCapabilitySet(entity.CapabilityTextProcessing), nil)
	taskID := c.CreateTask(context.Background(), "hello", "u1", entity.NewCapabilitySet(entity.CapabilityTextProcessing), 1, nil, nil)

	if ok := c.AssignTask(context.Background(), taskID, entity.NewCapabilitySet(entity.CapabilityTextProcessing)); ok {
		t.Fatal("AssignTask on an already-assigned task should return false")
	}
}

func TestUpdateTaskStatusRejectsIllegalTransition(t *testing.T) {
	c, _ := testController(t)
	c.RegisterAgent("a1", "Agent One", entity.NewCapabilitySet(entity.CapabilityTextProcessing), nil)
	taskID := c.CreateTask(context.Background(), "hello", "u1", entity.NewCapabilitySet(), 1, nil, nil)

	if ok := c.UpdateTaskStatus(context.Background(), taskID, entity.TaskStatusCompleted, nil); ok {
		t.Fatal("assigned->completed should be rejected (must pass through in_progress)")
	}
	if ok := c.UpdateTaskStatus(context.Background(), taskID, entity.TaskStatusFailed, nil); !ok {
		t.Fatal("assigned->failed should be legal")
	}
	if ok := c.UpdateTaskStatus(context.Background(), taskID, entity.TaskStatusCompleted, nil); ok {
		t.Fatal("terminal->anything should always be rejected")
	}
}

func TestRegisterMessageHandlerRunsInOrderAndIsolatesPanics(t *testing.T) {
	c, _ := testController(t)

	var order []int
	c.RegisterMessageHandler(entity.MessageKindSystemNotification, func(ctx context.Context, msg entity.Message) {
		panic("boom")
	})
	c.RegisterMessageHandler(entity.MessageKindSystemNotification, func(ctx context.Context, msg entity.Message) {
		order = append(order, 2)
	})

	c.SendMessage(context.Background(), "controller", entity.ReceiverBroadcast, entity.MessageKindSystemNotification, entity.SystemNotificationPayload{NotificationType: "pause"})

	if len(order) != 1 || order[0] != 2 {
		t.Fatalf("second handler did not run after first panicked: %v", order)
	}
}

func TestGetSystemStatusCounts(t *testing.T) {
	c, _ := testController(t)
	c.RegisterAgent("a1", "Agent One", entity.NewCapabilitySet(entity.CapabilityTextProcessing), nil)
	c.RegisterAgent("a2", "Agent Two", entity.NewCapabilitySet(entity.CapabilityCodeGeneration), nil)
	c.CreateTask(context.Background(), "hello", "u1", entity.NewCapabilitySet(entity.CapabilityTextProcessing), 1, nil, nil)
	c.CreateTask(context.Background(), "generate code", "u1", entity.NewCapabilitySet(entity.CapabilityCodeExecution), 1, nil, nil)

	status := c.GetSystemStatus()
	if status.AgentsByStatus[entity.AgentStatusActive] != 2 {
		t.Fatalf("active agents = %d, want 2", status.AgentsByStatus[entity.AgentStatusActive])
	}
	if status.TasksByStatus[entity.TaskStatusAssigned] != 1 {
		t.Fatalf("assigned tasks = %d, want 1", status.TasksByStatus[entity.TaskStatusAssigned])
	}
	if status.TasksByStatus[entity.TaskStatusPending] != 1 {
		t.Fatalf("pending tasks = %d, want 1", status.TasksByStatus[entity.TaskStatusPending])
	}
	if status.TotalMessages == 0 {
		t.Fatal("expected at least one recorded message")
	}
}
