package controller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/owulveryck/taskfabric/internal/entity"
	"github.com/owulveryck/taskfabric/internal/observability"
)

// Publisher is the subset of the Message Bus the Controller depends
// on. It is satisfied by *bus.Bus.
type Publisher interface {
	Publish(ctx context.Context, msg entity.Message) bool
}

// Handler processes one Message synchronously, on the caller's thread,
// inside SendMessage. It is distinct from a Bus subscription: handlers
// registered here are keyed by MessageKind rather than by recipient
// agent id, and run before SendMessage returns.
type Handler func(ctx context.Context, msg entity.Message)

// SystemStatus summarizes the Controller's live registries, per
// getSystemStatus's documented effect (counts of agents by state,
// tasks by status, total messages).
type SystemStatus struct {
	AgentsByStatus map[entity.AgentStatus]int
	TasksByStatus  map[entity.TaskStatus]int
	TotalMessages  int
}

// Controller owns the Agent registry, the Task registry, the
// capability routing index, and the message history log.
type Controller struct {
	mu sync.RWMutex

	agents      map[string]entity.Agent
	agentOrder  []string // registration order, tie-break for assignment
	tasks       map[string]entity.Task
	routing     map[entity.Capability]map[string]struct{}
	history     []entity.Message
	handlers    map[entity.MessageKind][]Handler

	bus     Publisher
	logger  *slog.Logger
	tracer  *observability.TraceManager
	metrics *observability.MetricsManager
}

// New constructs an empty Controller wired to bus for asynchronous
// notification fan-out.
func New(bus Publisher, logger *slog.Logger, tracer *observability.TraceManager, metrics *observability.MetricsManager) *Controller {
	return &Controller{
		agents:   make(map[string]entity.Agent),
		tasks:    make(map[string]entity.Task),
		routing:  make(map[entity.Capability]map[string]struct{}),
		handlers: make(map[entity.MessageKind][]Handler),
		bus:      bus,
		logger:   logger,
		tracer:   tracer,
		metrics:  metrics,
	}
}

// RegisterAgent adds id to the registry with status=active and indexes
// it under every capability it declares. Fails with no state change if
// id is already registered.
func (c *Controller) RegisterAgent(id, name string, capabilities entity.CapabilitySet, metadata map[string]any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.agents[id]; exists {
		return false
	}

	agent := entity.NewAgent(id, name, capabilities, metadata)
	c.agents[id] = agent
	c.agentOrder = append(c.agentOrder, id)

	for cap := range agent.Capabilities {
		if c.routing[cap] == nil {
			c.routing[cap] = make(map[string]struct{})
		}
		c.routing[cap][id] = struct{}{}
	}

	c.logger.Info("agent registered", "agent_id", id, "name", name, "capabilities", agent.Capabilities.ToSlice())
	return true
}

// UnregisterAgent removes id from the registry and from every
// capability routing list it appears in. Tasks already assigned to it
// keep their status untouched.
func (c *Controller) UnregisterAgent(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	agent, exists := c.agents[id]
	if !exists {
		return false
	}

	for cap := range agent.Capabilities {
		delete(c.routing[cap], id)
		if len(c.routing[cap]) == 0 {
			delete(c.routing, cap)
		}
	}

	delete(c.agents, id)
	for i, a := range c.agentOrder {
		if a == id {
			c.agentOrder = append(c.agentOrder[:i], c.agentOrder[i+1:]...)
			break
		}
	}

	c.logger.Info("agent unregistered", "agent_id", id)
	return true
}

// CreateTask materializes a pending Task, stores it, then immediately
// attempts AssignTask. The returned id is valid even if assignment
// fails — the Task remains pending.
func (c *Controller) CreateTask(ctx context.Context, description, creatorID string, required entity.CapabilitySet, priority int, deadline *time.Time, metadata map[string]any) string {
	taskID := uuid.NewString()
	task := entity.NewTask(taskID, description, creatorID, required.ToSlice(), priority, deadline, metadata)

	c.mu.Lock()
	c.tasks[taskID] = task
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.IncrementTasksCreated(ctx, creatorID)
	}
	c.logger.Info("task created", "task_id", taskID, "creator_id", creatorID, "required_capabilities", required.ToSlice())

	c.AssignTask(ctx, taskID, required)
	return taskID
}

// AssignTask scans registered agents in registration order and assigns
// taskID to the first whose capability set is a superset of required.
// It is a no-op returning false if the Task is unknown or not pending.
func (c *Controller) AssignTask(ctx context.Context, taskID string, required entity.CapabilitySet) bool {
	c.mu.Lock()

	task, exists := c.tasks[taskID]
	if !exists || task.Status != entity.TaskStatusPending {
		c.mu.Unlock()
		return false
	}

	var selected string
	for _, agentID := range c.agentOrder {
		agent := c.agents[agentID]
		if agent.Capabilities.ContainsAll(required) {
			selected = agentID
			break
		}
	}
	if selected == "" {
		c.mu.Unlock()
		c.logger.Warn("no capability-matching agent found", "task_id", taskID)
		return false
	}

	task.AssignedAgentID = selected
	task.Status = entity.TaskStatusAssigned
	c.tasks[taskID] = task
	c.mu.Unlock()

	c.logger.Info("task assigned", "task_id", taskID, "agent_id", selected)

	payload := entity.TaskAssignmentPayload{
		TaskID:      taskID,
		Description: task.Description,
		Metadata:    task.Metadata,
	}
	c.SendMessage(ctx, entity.ReceiverController, selected, entity.MessageKindTaskAssignment, payload)
	return true
}

// SendMessage constructs a Message, publishes it to the Bus, appends it
// to the history log if the Bus accepted it (or no Bus is wired), and
// synchronously runs any in-process handlers registered for kind. Handler panics are caught, logged, and
// do not prevent other handlers from running.
func (c *Controller) SendMessage(ctx context.Context, senderID, receiverID string, kind entity.MessageKind, content any) string {
	msg := entity.NewMessage(uuid.NewString(), senderID, receiverID, kind, content)

	c.mu.Lock()
	c.touchLastActiveLocked(senderID)
	handlers := append([]Handler(nil), c.handlers[kind]...)
	c.mu.Unlock()

	published := true
	if c.bus != nil {
		published = c.bus.Publish(ctx, msg)
	}
	if published {
		c.mu.Lock()
		c.history = append(c.history, msg)
		c.mu.Unlock()
	}

	for _, h := range handlers {
		c.runHandler(ctx, h, msg)
	}

	return msg.MessageID
}

func (c *Controller) runHandler(ctx context.Context, h Handler, msg entity.Message) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("recovered from panic in message handler", "message_id", msg.MessageID, "kind", msg.Kind, "panic", r)
		}
	}()
	h(ctx, msg)
}

// touchLastActiveLocked updates senderID's LastActive timestamp if it
// names a registered Agent. Callers must hold c.mu.
func (c *Controller) touchLastActiveLocked(senderID string) {
	agent, exists := c.agents[senderID]
	if !exists {
		return
	}
	agent.LastActive = time.Now()
	c.agents[senderID] = agent
}

// RegisterMessageHandler adds handler to the per-kind list. Multiple
// handlers per kind are supported; invocation order is registration
// order.
func (c *Controller) RegisterMessageHandler(kind entity.MessageKind, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[kind] = append(c.handlers[kind], handler)
}

// UpdateTaskStatus writes status and, if provided, result. Rejects
// transitions CanTransitionTo disallows. On reaching a terminal
// status, emits a task_result message to the Task's creator.
func (c *Controller) UpdateTaskStatus(ctx context.Context, taskID string, status entity.TaskStatus, result map[string]any) bool {
	c.mu.Lock()

	task, exists := c.tasks[taskID]
	if !exists {
		c.mu.Unlock()
		return false
	}
	if !task.Status.CanTransitionTo(status) {
		c.mu.Unlock()
		c.logger.Warn("rejected illegal task status transition", "task_id", taskID, "from", task.Status, "to", status)
		return false
	}

	task.Status = status
	if result != nil {
		task.Result = result
	}
	c.tasks[taskID] = task
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.IncrementTasksCompleted(ctx, string(status))
	}
	c.logger.Info("task status updated", "task_id", taskID, "status", status)

	if status.IsTerminal() {
		payload := entity.TaskResultPayload{
			TaskID: taskID,
			Status: status,
			Result: task.Result,
		}
		c.SendMessage(ctx, entity.ReceiverController, task.CreatorID, entity.MessageKindTaskResult, payload)
	}
	return true
}

// GetAgentsByCapability returns the ids of every registered Agent
// whose descriptor declares capability.
func (c *Controller) GetAgentsByCapability(capability entity.Capability) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := c.routing[capability]
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	return out
}

// GetTaskStatus returns taskID's current status and whether it exists.
func (c *Controller) GetTaskStatus(taskID string) (entity.TaskStatus, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	task, exists := c.tasks[taskID]
	if !exists {
		return "", false
	}
	return task.Status, true
}

// GetTask returns a copy of taskID's full Task record.
func (c *Controller) GetTask(taskID string) (entity.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	task, exists := c.tasks[taskID]
	return task, exists
}

// GetAgent returns a copy of id's Agent descriptor.
func (c *Controller) GetAgent(id string) (entity.Agent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	agent, exists := c.agents[id]
	return agent, exists
}

// GetSystemStatus summarizes agent counts by status, task counts by
// status, and total messages published through SendMessage.
func (c *Controller) GetSystemStatus() SystemStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := SystemStatus{
		AgentsByStatus: make(map[entity.AgentStatus]int),
		TasksByStatus:  make(map[entity.TaskStatus]int),
		TotalMessages:  len(c.history),
	}
	for _, a := range c.agents {
		status.AgentsByStatus[a.Status]++
	}
	for _, t := range c.tasks {
		status.TasksByStatus[t.Status]++
	}
	return status
}

// MessageHistory returns a copy of every Message successfully
// published through SendMessage, in publish order.
func (c *Controller) MessageHistory() []entity.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]entity.Message, len(c.history))
	copy(out, c.history)
	return out
}

// SetAgentStatus transitions id's local status, used by the Agent
// runtime to report shutdown/pause/resume and by UnregisterAgent's
// callers prior to removal.
func (c *Controller) SetAgentStatus(id string, status entity.AgentStatus) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	agent, exists := c.agents[id]
	if !exists {
		return false
	}
	agent.Status = status
	agent.LastActive = time.Now()
	c.agents[id] = agent
	return true
}
