package agentrt

import "github.com/owulveryck/taskfabric/internal/entity"

// Config holds the configuration for a Runtime.
type Config struct {
	// AgentID is the unique identifier this Runtime registers under.
	AgentID string

	// Name is the human-readable name recorded in the Agent descriptor.
	Name string

	// Capabilities is the set of capability tags this Runtime declares
	// to the Controller's routing index.
	Capabilities entity.CapabilitySet

	// Metadata is free-form data recorded on the Agent descriptor.
	Metadata map[string]any
}

// WithDefaults returns a copy of c with optional fields defaulted.
func (c *Config) WithDefaults() *Config {
	config := *c
	if config.Metadata == nil {
		config.Metadata = make(map[string]any)
	}
	return &config
}

// Validate checks that the required configuration fields are set.
func (c *Config) Validate() error {
	if c.AgentID == "" {
		return ErrMissingAgentID
	}
	if c.Name == "" {
		return ErrMissingName
	}
	if len(c.Capabilities) == 0 {
		return ErrNoCapabilities
	}
	return nil
}
