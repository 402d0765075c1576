// Command fabric-codeagent runs a standalone fabric instance hosting a
// single agent that executes task-supplied code in a throwaway Docker
// container. It is a minimal sibling of fabricd: its own Bus and
// Controller, wired to the code_execution agent and a small HTTP
// surface for submitting execution tasks directly.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/owulveryck/taskfabric/internal/agentrt"
	"github.com/owulveryck/taskfabric/internal/bus"
	"github.com/owulveryck/taskfabric/internal/config"
	"github.com/owulveryck/taskfabric/internal/controller"
	"github.com/owulveryck/taskfabric/internal/entity"
	"github.com/owulveryck/taskfabric/internal/exec"
	"github.com/owulveryck/taskfabric/internal/observability"
	"github.com/owulveryck/taskfabric/internal/sink"
)

func main() {
	if err := run(); err != nil {
		panic(err)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	cfg.ServiceName = "fabric-codeagent"

	obs, err := observability.NewObservability(observability.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		PrometheusPort: cfg.PrometheusPort,
		Environment:    cfg.Environment,
		LogLevel:       cfg.LogLevel,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = obs.Shutdown(shutdownCtx)
	}()

	metricsManager, err := observability.NewMetricsManager(obs.Meter)
	if err != nil {
		return err
	}
	traceManager := observability.NewTraceManager(cfg.ServiceName)

	messageBus := bus.New(bus.Config{
		Workers:       cfg.Workers,
		QueueSize:     cfg.QueueSize,
		DefaultTopic:  cfg.DefaultTopic,
		ShutdownGrace: time.Duration(cfg.ShutdownGrace) * time.Second,
	}, sink.NewNoopSink(obs.Logger), obs.Logger, traceManager, metricsManager)
	messageBus.Start()

	ctrl := controller.New(messageBus, obs.Logger, traceManager, metricsManager)

	runner, err := exec.NewDockerRunner(obs.Logger)
	if err != nil {
		return err
	}
	defer runner.Close()

	rtCfg := &agentrt.Config{
		AgentID:      "agent-codeexec",
		Name:         "codeexec",
		Capabilities: entity.NewCapabilitySet(entity.CapabilityCodeExecution),
	}
	runtime, err := agentrt.New(rtCfg, ctrl, messageBus, obs.Logger, traceManager, metricsManager)
	if err != nil {
		return err
	}
	if err := runtime.AddHandler(agentrt.DefaultTaskKind, newCodeExecHandler(runner, obs.Logger)); err != nil {
		return err
	}

	agentCtx, agentCancel := context.WithCancel(ctx)
	agentDone := make(chan error, 1)
	go func() { agentDone <- runtime.Run(agentCtx) }()

	server := newCodeAgentServer(ctrl, obs.Logger)
	go func() {
		obs.Logger.InfoContext(ctx, "fabric-codeagent HTTP surface listening", "addr", ":8091")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.ErrorContext(ctx, "codeagent server failed", "error", err)
		}
	}()

	<-ctx.Done()
	obs.Logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownGrace)*time.Second)
	defer shutdownCancel()

	_ = server.Shutdown(shutdownCtx)
	agentCancel()
	<-agentDone
	_ = messageBus.Shutdown(shutdownCtx)

	return nil
}
