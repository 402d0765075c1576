package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig holds all runtime configuration for a taskfabric process: the
// Message Bus, the Controller, the retrieval subsystem, the durable sink,
// and the ambient observability stack. Fields are loaded once at startup
// from environment variables and, optionally, a YAML overlay file, and are
// read-only afterward.
type AppConfig struct {
	// Message Bus
	QueueSize     int
	Workers       int
	DefaultTopic  string
	ShutdownGrace int // seconds

	// Controller
	TaskRetentionDays int
	MaxActiveTasks    int

	// Retrieval (VectorStore / Chunker defaults, spec section 6)
	RetrieverTopK     int
	RetrieverAlpha    float64
	UseHybridSearch   bool
	ChunkSize         int
	ChunkOverlap      int

	// Durable sink (internal/sink)
	NATSURL     string
	NATSSubject string

	// LLM adapter selection (internal/llm)
	LLMProvider string
	LLMModel    string

	// Observability stack
	OTLPEndpoint   string
	PrometheusPort string
	HealthPort     string

	// Service metadata
	ServiceName    string
	ServiceVersion string
	Environment    string
	LogLevel       string

	// AgentTypes holds per-agent-type capability lists and defaults
	// (spec section 6: "per-type capability list and per-type defaults").
	AgentTypes map[string]AgentTypeProfile
}

// AgentTypeProfile captures the defaults a demo or production agent of a
// given type should be constructed with: which capabilities it registers
// under, and retrieval tuning it should fall back to absent a per-task
// override.
type AgentTypeProfile struct {
	Capabilities    []string `yaml:"capabilities"`
	RAGTopK         int      `yaml:"ragK"`
	UseHybridSearch bool     `yaml:"useHybridSearch"`
}

// Load reads configuration from environment variables, applying defaults
// for anything unset.
func Load() *AppConfig {
	return &AppConfig{
		QueueSize:     getEnvAsInt("FABRIC_QUEUE_SIZE", 1000),
		Workers:       getEnvAsInt("FABRIC_WORKERS", 5),
		DefaultTopic:  getEnv("FABRIC_DEFAULT_TOPIC", "mcp-messages"),
		ShutdownGrace: getEnvAsInt("FABRIC_SHUTDOWN_GRACE_SECONDS", 5),

		TaskRetentionDays: getEnvAsInt("FABRIC_TASK_RETENTION_DAYS", 1),
		MaxActiveTasks:    getEnvAsInt("FABRIC_MAX_ACTIVE_TASKS", 10000),

		RetrieverTopK:   getEnvAsInt("FABRIC_RETRIEVER_TOP_K", 5),
		RetrieverAlpha:  getEnvAsFloat("FABRIC_RETRIEVER_ALPHA", 0.5),
		UseHybridSearch: getEnvAsBool("FABRIC_USE_HYBRID_SEARCH", false),
		ChunkSize:       getEnvAsInt("FABRIC_CHUNK_SIZE", 800),
		ChunkOverlap:    getEnvAsInt("FABRIC_CHUNK_OVERLAP", 100),

		NATSURL:     getEnv("FABRIC_NATS_URL", ""),
		NATSSubject: getEnv("FABRIC_NATS_SUBJECT", "mcp-messages"),

		LLMProvider: getEnv("FABRIC_LLM_PROVIDER", "echo"),
		LLMModel:    getEnv("FABRIC_LLM_MODEL", "claude-3-5-haiku-20241022"),

		OTLPEndpoint:   getEnv("FABRIC_OTLP_ENDPOINT", "127.0.0.1:4317"),
		PrometheusPort: getEnv("FABRIC_PROMETHEUS_PORT", "9090"),
		HealthPort:     getEnv("FABRIC_HEALTH_PORT", "8080"),

		ServiceName:    getEnv("SERVICE_NAME", "taskfabric"),
		ServiceVersion: getEnv("SERVICE_VERSION", "0.1.0"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),

		AgentTypes: map[string]AgentTypeProfile{},
	}
}

// yamlOverlay mirrors the subset of AppConfig that may be expressed in a
// static deployment file. Only non-zero fields override what Load()
// already populated from the environment.
type yamlOverlay struct {
	Bus struct {
		QueueSize     int    `yaml:"queueSize"`
		Workers       int    `yaml:"workers"`
		DefaultTopic  string `yaml:"defaultTopic"`
		ShutdownGrace int    `yaml:"shutdownGraceSeconds"`
	} `yaml:"bus"`
	Controller struct {
		TaskRetentionDays int `yaml:"taskRetentionDays"`
		MaxActiveTasks    int `yaml:"maxActiveTasks"`
	} `yaml:"controller"`
	Retrieval struct {
		TopK            int     `yaml:"topK"`
		Alpha           float64 `yaml:"alpha"`
		UseHybridSearch bool    `yaml:"useHybridSearch"`
		ChunkSize       int     `yaml:"chunkSize"`
		ChunkOverlap    int     `yaml:"chunkOverlap"`
	} `yaml:"retrieval"`
	AgentTypes map[string]AgentTypeProfile `yaml:"agentTypes"`
}

// LoadOverlay reads a YAML deployment file and merges it onto c. Only
// fields set in the file (non-zero) are applied; environment-derived
// values are otherwise preserved. This mirrors the env-first,
// file-second precedence the teacher's config package documents.
func (c *AppConfig) LoadOverlay(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config overlay %s: %w", path, err)
	}

	var overlay yamlOverlay
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return fmt.Errorf("parsing config overlay %s: %w", path, err)
	}

	if overlay.Bus.QueueSize != 0 {
		c.QueueSize = overlay.Bus.QueueSize
	}
	if overlay.Bus.Workers != 0 {
		c.Workers = overlay.Bus.Workers
	}
	if overlay.Bus.DefaultTopic != "" {
		c.DefaultTopic = overlay.Bus.DefaultTopic
	}
	if overlay.Bus.ShutdownGrace != 0 {
		c.ShutdownGrace = overlay.Bus.ShutdownGrace
	}

	if overlay.Controller.TaskRetentionDays != 0 {
		c.TaskRetentionDays = overlay.Controller.TaskRetentionDays
	}
	if overlay.Controller.MaxActiveTasks != 0 {
		c.MaxActiveTasks = overlay.Controller.MaxActiveTasks
	}

	if overlay.Retrieval.TopK != 0 {
		c.RetrieverTopK = overlay.Retrieval.TopK
	}
	if overlay.Retrieval.Alpha != 0 {
		c.RetrieverAlpha = overlay.Retrieval.Alpha
	}
	c.UseHybridSearch = c.UseHybridSearch || overlay.Retrieval.UseHybridSearch
	if overlay.Retrieval.ChunkSize != 0 {
		c.ChunkSize = overlay.Retrieval.ChunkSize
	}
	if overlay.Retrieval.ChunkOverlap != 0 {
		c.ChunkOverlap = overlay.Retrieval.ChunkOverlap
	}

	for name, profile := range overlay.AgentTypes {
		c.AgentTypes[name] = profile
	}

	return nil
}

// PrometheusURL returns a local scrape URL built from PrometheusPort.
// Nothing in this module listens on that port; metrics are served on the
// health server's /metrics endpoint.
func (c *AppConfig) PrometheusURL() string {
	return "http://localhost:" + c.PrometheusPort + "/metrics"
}

// getEnv gets an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default fallback.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat gets an environment variable as a float64 with a default fallback.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as a boolean with a default fallback.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
