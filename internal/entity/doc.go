// Package entity defines the fabric's core data model: the Message,
// Task, and Agent descriptor types, the closed vocabularies they're
// built from (message kind, task status, agent status), and the
// typed payload carriers a Message's Content field holds in place of
// an untyped map.
//
// Every type here is a plain value type. Concurrency safety for
// collections of these (the agent registry, the task registry, the
// capability routing index) is the responsibility of internal/controller
// and internal/bus, which own the registries; entity values themselves
// are safe to read and copy freely once constructed.
package entity
