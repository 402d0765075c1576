package sink

import (
	"context"
	"log/slog"

	"github.com/owulveryck/taskfabric/internal/entity"
)

// NoopSink implements bus.Sink by logging each message at debug level
// and discarding it. Useful for local development and tests where no
// NATS broker is available.
type NoopSink struct {
	logger *slog.Logger
}

// NewNoopSink constructs a NoopSink.
func NewNoopSink(logger *slog.Logger) *NoopSink {
	return &NoopSink{logger: logger}
}

// Send logs msg and returns nil.
func (s *NoopSink) Send(ctx context.Context, topic, key string, msg entity.Message) error {
	s.logger.DebugContext(ctx, "noop sink discarding message", "topic", topic, "key", key, "message_id", msg.MessageID)
	return nil
}
