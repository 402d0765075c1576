package entity

import "time"

// RequiredCapabilitiesKey is the Metadata key under which createTask
// records the required-capability tags, per spec: "records
// required_capabilities into metadata (as string tags for downstream
// inspection)".
const RequiredCapabilitiesKey = "required_capabilities"

// Task is a unit of work tracked by the Controller from creation
// through a terminal status.
type Task struct {
	TaskID          string
	Description     string
	CreatorID       string
	Status          TaskStatus
	AssignedAgentID string
	Priority        int
	Deadline        *time.Time
	Metadata        map[string]any
	Result          map[string]any
}

// NewTask constructs a pending Task with required capability tags
// recorded into Metadata under RequiredCapabilitiesKey.
func NewTask(id, description, creatorID string, required []Capability, priority int, deadline *time.Time, metadata map[string]any) Task {
	md := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		md[k] = v
	}
	tags := make([]string, len(required))
	for i, c := range required {
		tags[i] = string(c)
	}
	md[RequiredCapabilitiesKey] = tags

	return Task{
		TaskID:      id,
		Description: description,
		CreatorID:   creatorID,
		Status:      TaskStatusPending,
		Priority:    priority,
		Deadline:    deadline,
		Metadata:    md,
	}
}

// RequiredCapabilities reads the capability tags NewTask recorded into
// Metadata back out as a CapabilitySet.
func (t Task) RequiredCapabilities() CapabilitySet {
	raw, ok := t.Metadata[RequiredCapabilitiesKey]
	if !ok {
		return CapabilitySet{}
	}
	tags, ok := raw.([]string)
	if !ok {
		return CapabilitySet{}
	}
	caps := make([]Capability, len(tags))
	for i, tag := range tags {
		caps[i] = Capability(tag)
	}
	return NewCapabilitySet(caps...)
}
