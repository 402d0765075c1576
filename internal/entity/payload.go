package entity

// Payload carriers replace the source system's untyped string→object
// content map with one concrete struct per message kind, per the
// typed-payload design note: each carries the fields a handler
// actually expects, plus an Extra map for any caller-supplied data
// that doesn't have a named field yet.

// TaskRequestPayload is carried by a task_request Message: a request
// that a new Task be created, prior to it having a taskId.
type TaskRequestPayload struct {
	Description          string
	CreatorID            string
	RequiredCapabilities []Capability
	Priority             int
	Extra                map[string]any
}

// TaskAssignmentPayload is carried by a task_assignment Message sent
// from the Controller to the Agent a Task was assigned to.
type TaskAssignmentPayload struct {
	TaskID      string
	Description string
	Metadata    map[string]any
	Extra       map[string]any
}

// TaskUpdatePayload is carried by a task_update Message announcing an
// intermediate (non-terminal) status change.
type TaskUpdatePayload struct {
	TaskID string
	Status TaskStatus
	Extra  map[string]any
}

// TaskResultPayload is carried by a task_result Message sent to a
// Task's creator once the Task reaches a terminal status.
type TaskResultPayload struct {
	TaskID string
	Status TaskStatus
	Result map[string]any
	Extra  map[string]any
}

// AgentRegistrationPayload is carried by an agent_registration Message
// announcing a newly registered Agent.
type AgentRegistrationPayload struct {
	AgentID      string
	Name         string
	Capabilities []Capability
	Extra        map[string]any
}

// AgentStatusPayload is carried by an agent_status Message announcing
// an Agent's local state transition (active/paused/shutting_down/terminated).
type AgentStatusPayload struct {
	AgentID string
	Status  AgentStatus
	Extra   map[string]any
}

// SystemNotificationPayload is carried by a system_notification
// Message. NotificationType is one of "shutdown", "pause", "resume"
// for Agent runtime lifecycle control, or a free-form string for
// other operational broadcasts (e.g. observability log forwarding).
type SystemNotificationPayload struct {
	NotificationType string
	Extra            map[string]any
}
