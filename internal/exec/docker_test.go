package exec

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testRunner(t *testing.T) *DockerRunner {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	runner, err := NewDockerRunner(logger)
	if err != nil {
		t.Fatalf("NewDockerRunner: %v", err)
	}
	t.Cleanup(func() { _ = runner.Close() })

	if _, err := runner.cli.Ping(context.Background()); err != nil {
		t.Skipf("docker daemon unavailable: %v", err)
	}
	return runner
}

func TestRunExecutesCommandAndCapturesOutput(t *testing.T) {
	runner := testRunner(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := runner.Run(ctx, RunRequest{
		Image:   "alpine:latest",
		Cmd:     []string{"echo", "hello from sandbox"},
		Timeout: 15 * time.Second,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("ExitCode = %d, want 0", result.ExitCode)
	}
	if result.Stdout == "" {
		t.Fatal("expected non-empty stdout")
	}
}

func TestRunReportsNonZeroExitCode(t *testing.T) {
	runner := testRunner(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := runner.Run(ctx, RunRequest{
		Image:   "alpine:latest",
		Cmd:     []string{"sh", "-c", "exit 7"},
		Timeout: 15 * time.Second,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ExitCode != 7 {
		t.Fatalf("ExitCode = %d, want 7", result.ExitCode)
	}
}
