// Package controller implements the Controller: the Agent registry, the
// Task registry, the capability routing index, and the message history
// log. It offers a synchronous control surface and uses the Message Bus
// for asynchronous notification fan-out.
//
// # Quick Start
//
//	c := controller.New(b, logger, tracer, metrics)
//	c.RegisterAgent("a1", "Summarizer", entity.NewCapabilitySet(entity.CapabilityTextProcessing), nil)
//	taskID := c.CreateTask(ctx, "hello", "u1", entity.NewCapabilitySet(entity.CapabilityTextProcessing), 1, nil, nil)
//	status, _ := c.GetTaskStatus(taskID)
//
// # Capability routing
//
// The routing index maps each capability to the set of registered
// agent ids whose descriptor declares it. RegisterAgent and
// UnregisterAgent keep the index and the registry consistent: every
// (agent, capability) pair appears in both or neither.
//
// # Assignment
//
// AssignTask scans agents in registration order and picks the first
// whose capability set is a superset of the required set. It is a
// no-op returning false against a Task that is not pending — there is
// no reassignment.
package controller
