package entity

import "time"

// Message is immutable after publication: Content holds one of the
// Payload carriers declared in payload.go, selected by Kind.
type Message struct {
	MessageID  string
	SenderID   string
	ReceiverID string
	Kind       MessageKind
	Content    any
	CreatedAt  time.Time
}

// Reserved receiver ids.
const (
	ReceiverController = "controller"
	ReceiverBroadcast  = "broadcast"
)

// NewMessage constructs a Message with CreatedAt stamped to now. id
// must already be unique for the process lifetime; callers generate it
// (internal/controller uses github.com/google/uuid).
func NewMessage(id, senderID, receiverID string, kind MessageKind, content any) Message {
	return Message{
		MessageID:  id,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Kind:       kind,
		Content:    content,
		CreatedAt:  time.Now(),
	}
}

// IsBroadcast reports whether the message is addressed to every
// directly-subscribed Agent rather than a specific recipient.
func (m Message) IsBroadcast() bool {
	return m.ReceiverID == ReceiverBroadcast
}

// Topic returns the message's topic tag and whether one was set. Topic
// fan-out is orthogonal to direct/broadcast addressing: a message can
// carry a topic regardless of its ReceiverID, via the Extra map of its
// payload under the "topic" key.
func (m Message) Topic() (string, bool) {
	extra := contentExtra(m.Content)
	if extra == nil {
		return "", false
	}
	topic, ok := extra["topic"].(string)
	return topic, ok && topic != ""
}

func contentExtra(content any) map[string]any {
	switch p := content.(type) {
	case TaskRequestPayload:
		return p.Extra
	case TaskAssignmentPayload:
		return p.Extra
	case TaskUpdatePayload:
		return p.Extra
	case TaskResultPayload:
		return p.Extra
	case AgentRegistrationPayload:
		return p.Extra
	case AgentStatusPayload:
		return p.Extra
	case SystemNotificationPayload:
		return p.Extra
	default:
		return nil
	}
}
