package agentrt

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/owulveryck/taskfabric/internal/bus"
	"github.com/owulveryck/taskfabric/internal/entity"
	"github.com/owulveryck/taskfabric/internal/observability"
)

// ControllerAPI is the subset of *controller.Controller a Runtime
// depends on, per the Agent<->Controller cyclic-reference design
// note: the Runtime weakly references the Controller through this
// interface rather than sharing ownership.
type ControllerAPI interface {
	RegisterAgent(id, name string, capabilities entity.CapabilitySet, metadata map[string]any) bool
	UnregisterAgent(id string) bool
	SendMessage(ctx context.Context, senderID, receiverID string, kind entity.MessageKind, content any) string
	CreateTask(ctx context.Context, description, creatorID string, required entity.CapabilitySet, priority int, deadline *time.Time, metadata map[string]any) string
	UpdateTaskStatus(ctx context.Context, taskID string, status entity.TaskStatus, result map[string]any) bool
	SetAgentStatus(id string, status entity.AgentStatus) bool
}

// BusAPI is the subset of *bus.Bus the Runtime depends on for
// subscription.
type BusAPI interface {
	Subscribe(agentID string, handler bus.Handler)
	Unsubscribe(agentID string, handler bus.Handler)
}

// Runtime is the shared lifecycle around one implementation's
// ExecuteTask operation: registration, default handler subscription,
// task_assignment dispatch, and system_notification-driven state
// transitions.
//
// Runtime is not safe to configure (AddHandler) concurrently with
// Run, but its task dispatch is safe for concurrent invocation once
// Run has started — the Bus may deliver task_assignment messages from
// multiple worker-pool goroutines.
type Runtime struct {
	config     *Config
	controller ControllerAPI
	bus        BusAPI
	logger     *slog.Logger
	tracer     *observability.TraceManager
	metrics    *observability.MetricsManager

	mu       sync.RWMutex
	handlers map[string]TaskHandler
	status   entity.AgentStatus
	running  bool
}

// New constructs a Runtime. Configuration is validated and defaulted;
// an invalid Config returns an error.
func New(config *Config, controllerAPI ControllerAPI, busAPI BusAPI, logger *slog.Logger, tracer *observability.TraceManager, metrics *observability.MetricsManager) (*Runtime, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid agent runtime configuration: %w", err)
	}

	return &Runtime{
		config:     config,
		controller: controllerAPI,
		bus:        busAPI,
		logger:     logger,
		tracer:     tracer,
		metrics:    metrics,
		handlers:   make(map[string]TaskHandler),
		status:     entity.AgentStatusActive,
	}, nil
}

// AddHandler registers handler as the ExecuteTask implementation for
// taskKind. Returns ErrDuplicateHandler if taskKind is already
// registered. Must be called before Run.
func (r *Runtime) AddHandler(taskKind string, handler TaskHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[taskKind]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, taskKind)
	}
	r.handlers[taskKind] = handler
	return nil
}

// MustAddHandler is like AddHandler but panics on error, for
// initialization code that should fail fast.
func (r *Runtime) MustAddHandler(taskKind string, handler TaskHandler) {
	if err := r.AddHandler(taskKind, handler); err != nil {
		panic(err)
	}
}

// Run registers the Runtime with the Controller, subscribes default
// handlers on the Bus, and blocks until ctx is cancelled or SIGINT/SIGTERM
// is received. On return, the Runtime unregisters from the Controller.
func (r *Runtime) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAgentAlreadyRunning
	}
	if len(r.handlers) == 0 {
		r.mu.Unlock()
		return ErrNoHandlers
	}
	r.running = true
	r.mu.Unlock()

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	caps := make([]entity.Capability, 0)
	for c := range r.config.Capabilities {
		caps = append(caps, c)
	}
	if ok := r.controller.RegisterAgent(r.config.AgentID, r.config.Name, r.config.Capabilities, r.config.Metadata); !ok {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
		return ErrRegistrationFailed
	}

	r.bus.Subscribe(r.config.AgentID, r.handleMessage)

	r.logger.InfoContext(ctx, "agent runtime started", "agent_id", r.config.AgentID, "capabilities", caps, "task_kinds", len(r.handlers))

	<-ctx.Done()

	r.logger.InfoContext(context.Background(), "agent runtime shutting down", "agent_id", r.config.AgentID)
	r.bus.Unsubscribe(r.config.AgentID, nil)
	r.controller.UnregisterAgent(r.config.AgentID)

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()

	return nil
}

// handleMessage is the Runtime's single Bus subscription handler. It
// routes task_assignment and system_notification; anything else
// (including a misaddressed direct message) is dropped with a warning.
func (r *Runtime) handleMessage(ctx context.Context, msg entity.Message) {
	if msg.ReceiverID != r.config.AgentID && !msg.IsBroadcast() {
		r.logger.WarnContext(ctx, "dropping message addressed to another recipient", "agent_id", r.config.AgentID, "receiver_id", msg.ReceiverID, "message_id", msg.MessageID)
		return
	}

	switch msg.Kind {
	case entity.MessageKindTaskAssignment:
		payload, ok := msg.Content.(entity.TaskAssignmentPayload)
		if !ok {
			r.logger.WarnContext(ctx, "task_assignment with unexpected payload type", "agent_id", r.config.AgentID, "message_id", msg.MessageID)
			return
		}
		r.handleTaskAssignment(ctx, payload)
	case entity.MessageKindSystemNotification:
		payload, ok := msg.Content.(entity.SystemNotificationPayload)
		if !ok {
			r.logger.WarnContext(ctx, "system_notification with unexpected payload type", "agent_id", r.config.AgentID, "message_id", msg.MessageID)
			return
		}
		r.handleSystemNotification(ctx, payload)
	default:
		r.logger.WarnContext(ctx, "dropping message of unhandled kind", "agent_id", r.config.AgentID, "kind", msg.Kind, "message_id", msg.MessageID)
	}
}

func (r *Runtime) handleTaskAssignment(ctx context.Context, payload entity.TaskAssignmentPayload) {
	ctx, span := r.tracer.StartSpan(ctx, fmt.Sprintf("agentrt.%s.handle_task", r.config.AgentID))
	defer span.End()
	r.tracer.AddTaskAttributes(span, payload.TaskID, r.config.AgentID, payload.Metadata)

	r.controller.UpdateTaskStatus(ctx, payload.TaskID, entity.TaskStatusInProgress, nil)

	kind := DefaultTaskKind
	if tag, ok := payload.Metadata[TaskKindKey].(string); ok && tag != "" {
		kind = tag
	}

	r.mu.RLock()
	handler, exists := r.handlers[kind]
	r.mu.RUnlock()

	taskInfo := TaskInfo{TaskID: payload.TaskID, Description: payload.Description, Metadata: payload.Metadata}

	if !exists {
		err := fmt.Errorf("no handler registered for task kind %q", kind)
		r.tracer.RecordError(span, err)
		r.controller.UpdateTaskStatus(ctx, payload.TaskID, entity.TaskStatusFailed, map[string]any{"error": err.Error()})
		return
	}

	result, err := r.runHandler(ctx, handler, taskInfo)
	if err != nil {
		r.tracer.RecordError(span, err)
		r.controller.UpdateTaskStatus(ctx, payload.TaskID, entity.TaskStatusFailed, map[string]any{"error": err.Error()})
		return
	}

	r.tracer.SetSpanSuccess(span)
	r.controller.UpdateTaskStatus(ctx, payload.TaskID, entity.TaskStatusCompleted, result)
}

// runHandler invokes handler, converting a panic into a failed-task
// error so one misbehaving ExecuteTask implementation cannot take
// down the Runtime's dispatch goroutine.
func (r *Runtime) runHandler(ctx context.Context, handler TaskHandler, task TaskInfo) (result map[string]any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("task handler panic: %v", rec)
		}
	}()
	return handler(ctx, task)
}

func (r *Runtime) handleSystemNotification(ctx context.Context, payload entity.SystemNotificationPayload) {
	switch payload.NotificationType {
	case notificationShutdown:
		r.setStatus(entity.AgentStatusTerminated)
		r.controller.UnregisterAgent(r.config.AgentID)
	case notificationPause:
		r.setStatus(entity.AgentStatusPaused)
	case notificationResume:
		r.setStatus(entity.AgentStatusActive)
	default:
		r.logger.DebugContext(ctx, "ignoring unrecognized system_notification type", "agent_id", r.config.AgentID, "type", payload.NotificationType)
	}
}

func (r *Runtime) setStatus(status entity.AgentStatus) {
	r.mu.Lock()
	r.status = status
	r.mu.Unlock()
	r.controller.SetAgentStatus(r.config.AgentID, status)
}

// Status returns the Runtime's current local state.
func (r *Runtime) Status() entity.AgentStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// SendMessage delegates to the injected Controller, per the Agent
// runtime contract's normative "may call sendMessage" clause.
func (r *Runtime) SendMessage(ctx context.Context, receiverID string, kind entity.MessageKind, content any) string {
	return r.controller.SendMessage(ctx, r.config.AgentID, receiverID, kind, content)
}

// CreateTask delegates to the injected Controller, per the Agent
// runtime contract's normative "may call createTask" clause.
func (r *Runtime) CreateTask(ctx context.Context, description string, required entity.CapabilitySet, priority int, metadata map[string]any) string {
	return r.controller.CreateTask(ctx, description, r.config.AgentID, required, priority, nil, metadata)
}
