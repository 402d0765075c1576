package demo

import (
	"context"
	"fmt"

	"github.com/owulveryck/taskfabric/internal/agentrt"
	"github.com/owulveryck/taskfabric/internal/llm"
)

// NewSummarizerHandler returns a TaskHandler that asks llmClient to
// summarize the task description, returning the summary under "summary".
func NewSummarizerHandler(llmClient llm.Client) agentrt.TaskHandler {
	return func(ctx context.Context, task agentrt.TaskInfo) (map[string]any, error) {
		prompt := fmt.Sprintf("Summarize the following in two sentences:\n\n%s", task.Description)
		summary, err := llmClient.GenerateText(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("demo: summarize task %s: %w", task.TaskID, err)
		}
		return map[string]any{"summary": summary}, nil
	}
}
