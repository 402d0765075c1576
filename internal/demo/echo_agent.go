package demo

import (
	"context"

	"github.com/owulveryck/taskfabric/internal/agentrt"
)

// NewEchoHandler returns a TaskHandler that does nothing but reflect the
// task description back as its result, useful for exercising the Agent
// runtime contract's lifecycle without any real collaborator.
func NewEchoHandler() agentrt.TaskHandler {
	return func(ctx context.Context, task agentrt.TaskInfo) (map[string]any, error) {
		return map[string]any{"echo": task.Description}, nil
	}
}
