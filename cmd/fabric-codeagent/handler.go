package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/owulveryck/taskfabric/internal/agentrt"
	"github.com/owulveryck/taskfabric/internal/exec"
)

var errMissingCode = errors.New("task metadata must include a \"code\" string and an \"image\" string")

// newCodeExecHandler returns a TaskHandler that runs task.Metadata's
// "code" under /bin/sh inside task.Metadata's "image" and reports the
// container's stdout, stderr, and exit code as the task result.
func newCodeExecHandler(runner *exec.DockerRunner, logger *slog.Logger) agentrt.TaskHandler {
	return func(ctx context.Context, task agentrt.TaskInfo) (map[string]any, error) {
		code, _ := task.Metadata["code"].(string)
		image, _ := task.Metadata["image"].(string)
		if code == "" || image == "" {
			return nil, errMissingCode
		}

		logger.InfoContext(ctx, "running code execution task", "task_id", task.TaskID, "image", image)

		result, err := runner.Run(ctx, exec.RunRequest{
			Image:   image,
			Cmd:     []string{"/bin/sh", "-c", code},
			Timeout: 30 * time.Second,
		})
		if err != nil {
			return nil, err
		}

		return map[string]any{
			"exitCode": result.ExitCode,
			"stdout":   result.Stdout,
			"stderr":   result.Stderr,
		}, nil
	}
}
