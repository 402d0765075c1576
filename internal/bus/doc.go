// Package bus implements the Message Bus: asynchronous, in-process
// fan-out to direct and topic subscribers plus broadcast, backed by a
// bounded worker pool, with every published message additionally
// mirrored to an external durable sink.
//
// # Quick Start
//
//	b := bus.New(bus.Config{Workers: 5, QueueSize: 1000}, sink.NewNoopSink(logger), logger, traceManager, metricsManager)
//	b.Start()
//	defer b.Shutdown(context.Background())
//
//	b.Subscribe("agent-1", func(ctx context.Context, msg entity.Message) {
//	    // handle msg
//	})
//
//	ok := b.Publish(ctx, entity.NewMessage(id, "controller", "agent-1", entity.MessageKindTaskAssignment, payload))
//
// # Subscription model
//
// Direct subscription, broadcast, and topic subscription compose
// additively: a single Publish call may fan out via any subset of
// them, and duplicate handler entries are never deduplicated.
//
// # Back-pressure
//
// The dispatch queue is bounded at Config.QueueSize. When it is full,
// Publish does not block and does not drop the oldest entry; it
// rejects the new submission and returns false, incrementing the
// fabric_bus_dropped_total metric.
package bus
