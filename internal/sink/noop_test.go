package sink

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/owulveryck/taskfabric/internal/entity"
)

func TestNoopSinkSendNeverFails(t *testing.T) {
	s := NewNoopSink(slog.New(slog.NewTextHandler(io.Discard, nil)))
	msg := entity.NewMessage("m1", "controller", "a1", entity.MessageKindTaskAssignment, entity.TaskAssignmentPayload{TaskID: "t1"})
	if err := s.Send(context.Background(), "mcp-messages", "m1", msg); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
}
