// Package config provides centralized configuration management for
// taskfabric processes through environment variables, with an optional
// YAML overlay for static deployment settings.
//
// # Overview
//
// The config package loads process configuration from environment
// variables, providing a single source of truth for:
//   - Message Bus tuning (queue size, worker count, default topic)
//   - Controller limits (max active tasks, task retention)
//   - Retrieval defaults (top-K, hybrid search, chunking)
//   - The durable sink (NATS URL/subject)
//   - The LLM adapter selection
//   - Observability stack endpoints (OTLP, Prometheus, health port)
//   - Service metadata (name, version, environment, log level)
//
// All configuration values have sensible defaults, so a fabric can run
// without any environment variable configuration.
//
// # Quick Start
//
//	cfg := config.Load()
//	fmt.Println(cfg.QueueSize, cfg.Workers, cfg.DefaultTopic)
//
// # Configuration Fields
//
// **Message Bus**:
//   - FABRIC_QUEUE_SIZE: bounded dispatch queue size (default: 1000)
//   - FABRIC_WORKERS: worker pool size (default: 5)
//   - FABRIC_DEFAULT_TOPIC: default pub/sub topic (default: "mcp-messages")
//   - FABRIC_SHUTDOWN_GRACE_SECONDS: drain grace period (default: 5)
//
// **Controller**:
//   - FABRIC_TASK_RETENTION_DAYS: loaded into TaskRetentionDays (default: 1)
//   - FABRIC_MAX_ACTIVE_TASKS: loaded into MaxActiveTasks (default: 10000)
//
// The Controller does not read either value: tasks are never pruned and
// the number of tracked tasks is not capped.
//
// **Retrieval**:
//   - FABRIC_RETRIEVER_TOP_K, FABRIC_RETRIEVER_ALPHA, FABRIC_USE_HYBRID_SEARCH
//   - FABRIC_CHUNK_SIZE, FABRIC_CHUNK_OVERLAP
//
// **Durable sink**:
//   - FABRIC_NATS_URL: NATS server URL (empty disables NATS, falls back to NoopSink)
//   - FABRIC_NATS_SUBJECT: loaded into NATSSubject; the NATS sink does not
//     read it and publishes each message to its topic (or
//     FABRIC_DEFAULT_TOPIC) instead
//
// **LLM adapter**:
//   - FABRIC_LLM_PROVIDER: "anthropic", "openai", or "echo" (default: "echo")
//   - FABRIC_LLM_MODEL: model identifier passed to the chosen provider
//
// **Observability**:
//   - FABRIC_OTLP_ENDPOINT, FABRIC_PROMETHEUS_PORT, FABRIC_HEALTH_PORT
//
// **Service Metadata**:
//   - SERVICE_NAME, SERVICE_VERSION, ENVIRONMENT, LOG_LEVEL
//
// # YAML Overlay
//
// A YAML file's contents may be merged on top of the environment-derived
// AppConfig via LoadOverlay, primarily to declare AgentTypeProfile
// entries that have no natural environment-variable form. The bundled
// commands (fabricd, fabric-codeagent) take no `--config` flag and do
// not call LoadOverlay themselves:
//
//	cfg := config.Load()
//	if err := cfg.LoadOverlay(path); err != nil {
//	    log.Fatal(err)
//	}
//
// # Configuration Precedence
//
//  1. YAML overlay, where LoadOverlay is called, for fields the overlay
//     sets to a non-zero value
//  2. Environment variables (if set)
//  3. Defaults
//
// # Thread Safety
//
// AppConfig is safe to read from multiple goroutines once loaded. Do
// not mutate it after startup, except through LoadOverlay during
// process initialization.
package config
