// Command fabricd runs the task fabric daemon: the Message Bus, the
// Controller, a set of demo agents wired through the Agent runtime
// contract, and a thin HTTP admin surface over the Controller.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/owulveryck/taskfabric/internal/agentrt"
	"github.com/owulveryck/taskfabric/internal/bus"
	"github.com/owulveryck/taskfabric/internal/config"
	"github.com/owulveryck/taskfabric/internal/controller"
	"github.com/owulveryck/taskfabric/internal/demo"
	"github.com/owulveryck/taskfabric/internal/entity"
	"github.com/owulveryck/taskfabric/internal/llm"
	"github.com/owulveryck/taskfabric/internal/observability"
	"github.com/owulveryck/taskfabric/internal/retrieval"
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

	healthServer := observability.NewHealthServer(cfg.HealthPort, cfg.ServiceName, cfg.ServiceVersion)
	healthServer.AddChecker("self", observability.NewBasicHealthChecker("self", func(context.Context) error { return nil }))
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			obs.Logger.ErrorContext(ctx, "health server failed", "error", err)
		}
	}()

	eventSink := buildSink(cfg, obs.Logger)

	messageBus := bus.New(bus.Config{
		Workers:       cfg.Workers,
		QueueSize:     cfg.QueueSize,
		DefaultTopic:  cfg.DefaultTopic,
		ShutdownGrace: time.Duration(cfg.ShutdownGrace) * time.Second,
	}, eventSink, obs.Logger, traceManager, metricsManager)
	messageBus.Start()

	ctrl := controller.New(messageBus, obs.Logger, traceManager, metricsManager)

	llmClient := buildLLMClient(cfg)
	store := retrieval.NewMemoryStore(256)

	agents, err := startDemoAgents(ctx, cfg, ctrl, messageBus, obs.Logger, traceManager, metricsManager, llmClient, store)
	if err != nil {
		return err
	}

	server := newAdminServer(ctrl, obs.Logger)
	go func() {
		obs.Logger.InfoContext(ctx, "admin HTTP surface listening", "addr", ":8090")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.ErrorContext(ctx, "admin server failed", "error", err)
		}
	}()

	<-ctx.Done()
	obs.Logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownGrace)*time.Second)
	defer shutdownCancel()

	_ = server.Shutdown(shutdownCtx)
	for _, a := range agents {
		a.cancel()
	}
	_ = messageBus.Shutdown(shutdownCtx)
	_ = healthServer.Shutdown(shutdownCtx)

	return nil
}

func buildSink(cfg *config.AppConfig, logger *slog.Logger) bus.Sink {
	if cfg.NATSURL == "" {
		return sink.NewNoopSink(logger)
	}
	natsSink, err := sink.NewNATSSink(cfg.NATSURL, logger)
	if err != nil {
		logger.Warn("falling back to noop sink: nats connection failed", "error", err)
		return sink.NewNoopSink(logger)
	}
	return natsSink
}

func buildLLMClient(cfg *config.AppConfig) llm.Client {
	switch cfg.LLMProvider {
	case "anthropic":
		return llm.NewAnthropicClient(os.Getenv("ANTHROPIC_API_KEY"), "", cfg.LLMModel, 0)
	case "openai":
		return llm.NewOpenAIClient(os.Getenv("OPENAI_API_KEY"), "", cfg.LLMModel)
	default:
		return llm.EchoClient{}
	}
}

type runningAgent struct {
	cancel context.CancelFunc
}

// startDemoAgents registers and runs one agentrt.Runtime per demo
// handler, each in its own goroutine, per Runtime.Run's documented
// contract (blocks until its context is cancelled).
func startDemoAgents(
	ctx context.Context,
	cfg *config.AppConfig,
	ctrl *controller.Controller,
	messageBus *bus.Bus,
	logger *slog.Logger,
	tracer *observability.TraceManager,
	metrics *observability.MetricsManager,
	llmClient llm.Client,
	store *retrieval.MemoryStore,
) ([]runningAgent, error) {
	specs := []struct {
		id           string
		name         string
		capabilities []entity.Capability
		handler      agentrt.TaskHandler
	}{
		{"agent-echo", "echo", []entity.Capability{"echo"}, demo.NewEchoHandler()},
		{"agent-summarizer", "summarizer", []entity.Capability{"summarize"}, demo.NewSummarizerHandler(llmClient)},
		{"agent-retrieval", "retrieval", []entity.Capability{"retrieve"}, demo.NewRetrievalHandler(store, cfg.AgentTypes["retrieval"])},
	}

	agents := make([]runningAgent, 0, len(specs))
	for _, spec := range specs {
		rtCfg := &agentrt.Config{
			AgentID:      spec.id,
			Name:         spec.name,
			Capabilities: entity.NewCapabilitySet(spec.capabilities...),
		}
		runtime, err := agentrt.New(rtCfg, ctrl, messageBus, logger, tracer, metrics)
		if err != nil {
			return nil, err
		}
		if err := runtime.AddHandler(agentrt.DefaultTaskKind, spec.handler); err != nil {
			return nil, err
		}

		agentCtx, agentCancel := context.WithCancel(ctx)
		go func(rt *agentrt.Runtime, aCtx context.Context) {
			if err := rt.Run(aCtx); err != nil {
				logger.ErrorContext(aCtx, "demo agent exited with error", "error", err)
			}
		}(runtime, agentCtx)

		agents = append(agents, runningAgent{cancel: agentCancel})
	}
	return agents, nil
}
