package agentrt

import (
	"context"
	"errors"
)

// TaskKindKey is the Task.Metadata key a TaskAssignmentPayload's
// Metadata carries the dispatch tag under. Per the dynamic-dispatch
// design note, ExecuteTask routing replaces a task_type string switch
// with a registry of handlers keyed by this tag, looked up once at
// dispatch time rather than inside a single handler body.
const TaskKindKey = "task_kind"

// DefaultTaskKind is used when a task_assignment carries no
// TaskKindKey entry.
const DefaultTaskKind = "default"

// TaskInfo is what ExecuteTask and a keyed TaskHandler receive: the
// fields of the assigned Task a handler actually needs.
type TaskInfo struct {
	TaskID      string
	Description string
	Metadata    map[string]any
}

// TaskHandler implements the normative ExecuteTask operation for one
// task kind. It may fail; it must run synchronously relative to the
// Runtime's dispatch of the task_assignment that triggered it.
type TaskHandler func(ctx context.Context, task TaskInfo) (map[string]any, error)

// Common errors.
var (
	ErrMissingAgentID      = errors.New("agent id is required")
	ErrMissingName         = errors.New("agent name is required")
	ErrNoCapabilities      = errors.New("at least one capability must be declared")
	ErrDuplicateHandler    = errors.New("handler for this task kind already registered")
	ErrNoHandlers          = errors.New("at least one task handler must be registered")
	ErrAgentAlreadyRunning = errors.New("agent runtime is already running")
	ErrRegistrationFailed  = errors.New("agent registration with controller failed")
)

// These are the system_notification types the Runtime reacts to on its
// own, per the Agent runtime contract.
const (
	notificationShutdown = "shutdown"
	notificationPause    = "pause"
	notificationResume   = "resume"
)
