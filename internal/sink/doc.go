// Package sink implements the Message Bus's external durable log
// collaborator: bus.Sink, a single send(topic, key, message) -> async
// ack operation whose failures are logged and never propagated to
// publishers.
package sink
