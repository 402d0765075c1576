package entity

// MessageKind is the closed vocabulary a Message's Kind is drawn from.
type MessageKind string

const (
	MessageKindTaskRequest        MessageKind = "task_request"
	MessageKindTaskAssignment     MessageKind = "task_assignment"
	MessageKindTaskUpdate         MessageKind = "task_update"
	MessageKindTaskResult         MessageKind = "task_result"
	MessageKindAgentRegistration  MessageKind = "agent_registration"
	MessageKindAgentStatus        MessageKind = "agent_status"
	MessageKindSystemNotification MessageKind = "system_notification"
)

// TaskStatus is the closed vocabulary a Task's Status is drawn from.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusAssigned   TaskStatus = "assigned"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// IsTerminal reports whether a Task in this status can never transition again.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// CanTransitionTo reports whether moving from s to next is a legal Task
// lifecycle transition: pending→assigned, assigned→in_progress,
// in_progress→{completed,failed}, pending|assigned→failed. Terminal
// statuses never transition anywhere, including to themselves.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch s {
	case TaskStatusPending:
		return next == TaskStatusAssigned || next == TaskStatusFailed
	case TaskStatusAssigned:
		return next == TaskStatusInProgress || next == TaskStatusFailed
	case TaskStatusInProgress:
		return next == TaskStatusCompleted || next == TaskStatusFailed
	default:
		return false
	}
}

// AgentStatus is the closed vocabulary an Agent descriptor's Status is
// drawn from.
type AgentStatus string

const (
	AgentStatusActive       AgentStatus = "active"
	AgentStatusPaused       AgentStatus = "paused"
	AgentStatusShuttingDown AgentStatus = "shutting_down"
	AgentStatusTerminated   AgentStatus = "terminated"
)
