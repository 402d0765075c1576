package exec

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// RunRequest describes one code-execution request.
type RunRequest struct {
	Image      string
	Cmd        []string
	Env        []string
	WorkingDir string
	Memory     int64 // bytes, 0 means unbounded
	Timeout    time.Duration
}

// RunResult is the outcome of a completed container run.
type RunResult struct {
	ExitCode int64
	Stdout   string
	Stderr   string
}

// DockerRunner executes RunRequests in throwaway containers: create,
// start, wait for exit, collect logs, remove. Containers never
// outlive a single Run call.
type DockerRunner struct {
	cli    *client.Client
	logger *slog.Logger
}

// NewDockerRunner builds a DockerRunner against the local Docker
// daemon, negotiating the API version like the examples' docker
// clients do.
func NewDockerRunner(logger *slog.Logger) (*DockerRunner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("exec: new docker client: %w", err)
	}
	return &DockerRunner{cli: cli, logger: logger}, nil
}

// Close releases the underlying Docker client.
func (r *DockerRunner) Close() error {
	return r.cli.Close()
}

// Run creates a container for req, starts it, waits for it to exit
// (or req.Timeout to elapse, whichever comes first), and returns its
// exit code and captured stdout/stderr. The container is always
// removed before Run returns, success or failure.
func (r *DockerRunner) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	if req.Timeout <= 0 {
		req.Timeout = 30 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	containerCfg := &container.Config{
		Image:      req.Image,
		Cmd:        req.Cmd,
		Env:        req.Env,
		WorkingDir: req.WorkingDir,
	}
	hostCfg := &container.HostConfig{
		AutoRemove: false,
		Resources: container.Resources{
			Memory: req.Memory,
		},
	}

	resp, err := r.cli.ContainerCreate(runCtx, containerCfg, hostCfg, nil, nil, "")
	if err != nil {
		return RunResult{}, fmt.Errorf("exec: create container: %w", err)
	}
	r.logger.DebugContext(runCtx, "container created", "container_id", resp.ID, "image", req.Image)

	defer func() {
		rmCtx, rmCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer rmCancel()
		if err := r.cli.ContainerRemove(rmCtx, resp.ID, container.RemoveOptions{Force: true}); err != nil {
			r.logger.Warn("exec: failed to remove container", "container_id", resp.ID, "error", err)
		}
	}()

	if err := r.cli.ContainerStart(runCtx, resp.ID, container.StartOptions{}); err != nil {
		return RunResult{}, fmt.Errorf("exec: start container: %w", err)
	}

	exitCode, err := r.wait(runCtx, resp.ID)
	if err != nil {
		return RunResult{}, err
	}

	stdout, stderr, err := r.collectLogs(runCtx, resp.ID)
	if err != nil {
		return RunResult{}, err
	}

	return RunResult{ExitCode: exitCode, Stdout: stdout, Stderr: stderr}, nil
}

func (r *DockerRunner) wait(ctx context.Context, containerID string) (int64, error) {
	statusCh, errCh := r.cli.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if err != nil {
			return -1, fmt.Errorf("exec: wait container: %w", err)
		}
		return -1, nil
	case status := <-statusCh:
		return status.StatusCode, nil
	case <-ctx.Done():
		return -1, fmt.Errorf("exec: wait container: %w", ctx.Err())
	}
}

func (r *DockerRunner) collectLogs(ctx context.Context, containerID string) (stdout, stderr string, err error) {
	reader, err := r.cli.ContainerLogs(ctx, containerID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return "", "", fmt.Errorf("exec: container logs: %w", err)
	}
	defer reader.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdoutBuf, &stderrBuf, reader); err != nil {
		return "", "", fmt.Errorf("exec: demux container logs: %w", err)
	}
	return stdoutBuf.String(), stderrBuf.String(), nil
}
