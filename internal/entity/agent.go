package entity

import "time"

// Agent is the descriptor the Controller's registry holds for each
// registered participant — not the runtime itself (that lives in
// internal/agentrt), just the data the Controller routes and reports
// against.
type Agent struct {
	AgentID      string
	Name         string
	Capabilities CapabilitySet
	Status       AgentStatus
	RegisteredAt time.Time
	LastActive   time.Time
	Metadata     map[string]any
}

// NewAgent constructs an active Agent descriptor with RegisteredAt and
// LastActive stamped to now, per registerAgent's documented effect.
func NewAgent(id, name string, capabilities CapabilitySet, metadata map[string]any) Agent {
	now := time.Now()
	return Agent{
		AgentID:      id,
		Name:         name,
		Capabilities: capabilities.Clone(),
		Status:       AgentStatusActive,
		RegisteredAt: now,
		LastActive:   now,
		Metadata:     metadata,
	}
}
