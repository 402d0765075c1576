package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/owulveryck/taskfabric/internal/entity"
)

// NATSSink implements bus.Sink over a NATS connection: every Send
// publishes a JSON-encoded envelope to topic and returns as soon as
// the client has accepted it for delivery, matching the collaborator
// contract's "async ack" language — NATS core publish does not wait
// for a broker acknowledgment.
type NATSSink struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// envelope is the wire shape published to NATS: key threads through
// for downstream correlation even though NATS core has no per-message
// metadata headers enabled by default.
type envelope struct {
	Key     string         `json:"key"`
	Message entity.Message `json:"message"`
}

// NewNATSSink dials url and returns a ready sink. Reconnection is
// handled by the client library; connection-level events are logged.
func NewNATSSink(url string, logger *slog.Logger) (*NATSSink, error) {
	opts := []nats.Option{
		nats.Name("taskfabric"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats sink disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats sink reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("nats sink connection closed")
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats sink at %s: %w", url, err)
	}

	logger.Info("connected to nats durable sink", "url", url)
	return &NATSSink{conn: conn, logger: logger}, nil
}

// Send publishes msg to topic. NATS core publish is fire-and-forget
// from the client's perspective: a returned error means the local
// client rejected the publish (e.g. connection closed), not that the
// broker failed to receive it.
func (s *NATSSink) Send(ctx context.Context, topic, key string, msg entity.Message) error {
	data, err := json.Marshal(envelope{Key: key, Message: msg})
	if err != nil {
		return fmt.Errorf("marshal message envelope: %w", err)
	}
	if err := s.conn.Publish(topic, data); err != nil {
		return fmt.Errorf("publish to nats subject %s: %w", topic, err)
	}
	return nil
}

// Close drains and closes the underlying connection.
func (s *NATSSink) Close() error {
	return s.conn.Drain()
}
