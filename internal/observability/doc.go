// Package observability provides the fabric's tracing, metrics,
// structured logging, and health check infrastructure.
//
// # Overview
//
// The package wires OpenTelemetry tracing and metrics, log/slog-based
// structured logging, and HTTP health endpoints into a single
// Observability value, built once per process:
//   - Distributed tracing (OpenTelemetry, OTLP gRPC exporter)
//   - Metrics collection (OpenTelemetry meter, Prometheus exporter)
//   - Structured logging (log/slog, with trace context injected)
//   - Health check endpoints (/health, /ready, /metrics)
//
// This is the foundation the fabric daemons (fabricd with its demo
// agents, and fabric-codeagent) build on for consistent tracing,
// metrics, and logging. The fabricctl CLI does not use it.
//
// # Quick Start
//
//	cfg := observability.DefaultConfig("fabricd")
//	obs, err := observability.NewObservability(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer obs.Shutdown(context.Background())
//
//	logger := obs.Logger
//	tracer := obs.Tracer
//	meter := obs.Meter
//
// This sets up an OTLP trace exporter, a Prometheus metrics exporter,
// a structured logger with trace-context injection, and resource
// attributes (service name, version, environment).
//
// # Distributed Tracing
//
//	traceManager := observability.NewTraceManager(cfg.ServiceName)
//
//	ctx, span := traceManager.StartPublishSpan(ctx, "task.topic", "task_assignment")
//	defer span.End()
//
//	traceManager.AddTaskAttributes(span, taskID, creatorID, task.Metadata)
//	if err != nil {
//	    traceManager.RecordError(span, err)
//	} else {
//	    traceManager.SetSpanSuccess(span)
//	}
//
// # Metrics Collection
//
//	metricsManager, err := observability.NewMetricsManager(obs.Meter)
//	metricsManager.IncrementTasksCreated(ctx, creatorID)
//	metricsManager.RecordBusDispatchDuration(ctx, topic, elapsed)
//	metricsManager.RecordWorkflowNodeDuration(ctx, node, elapsed)
//
// All metrics are registered with the Prometheus exporter and served on
// the health server's /metrics endpoint (HealthPort, default
// :8080/metrics). No listener is opened on Config.PrometheusPort.
//
// # Structured Logging
//
//	logger.InfoContext(ctx, "task assigned", "task_id", taskID, "agent_id", agentID)
//	logger.ErrorContext(ctx, "task execution failed", "task_id", taskID, "error", err)
//
// Log levels follow DEBUG (per-message tracing), INFO (lifecycle
// transitions), WARN (recoverable anomalies), ERROR (handler/sink
// failures). DEBUG also mirrors logs to stdout via CombinedHandler.
//
// ObservabilityHandler additionally buffers log entries and, when
// SetNotifier is called, forwards each entry onto the Message Bus as a
// system_notification, so an operator watching the bus sees log
// traffic inline with task and agent events.
//
// # Health Checks
//
//	healthServer := observability.NewHealthServer(cfg.HealthPort, cfg.ServiceName, cfg.ServiceVersion)
//	healthServer.AddChecker("self", observability.NewBasicHealthChecker("self", func(ctx context.Context) error {
//	    return nil
//	}))
//	healthServer.AddChecker("sink", observability.NewTCPHealthChecker("sink", natsAddr))
//	go healthServer.Start(context.Background())
//
// # Graceful Shutdown
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//	if err := obs.Shutdown(ctx); err != nil {
//	    log.Printf("observability shutdown error: %v", err)
//	}
//
// # Related Packages
//
//   - internal/config: supplies DefaultConfig's environment-derived values
//   - internal/bus: records Publish duration with MetricsManager, and
//     traces and times each handler dispatch
//   - internal/controller: counts task creation and status updates
//   - internal/workflow: not instrumented; RecordWorkflowNodeDuration and
//     IncrementWorkflowRuns have no caller in this module
package observability
