package adapter

import (
	"context"
	"time"
)

type ChatEventType string

const (
	EventSendSucceeded   ChatEventType = "send_succeeded"
	EventSendFailed      ChatEventType = "send_failed"
	EventSessionSaved    ChatEventType = "session_saved"
	EventSessionLoaded   ChatEventType = "session_loaded"
	EventSessionDeleted  ChatEventType = "session_deleted"
	EventPersonaSelected ChatEventType = "persona_selected"
	EventChatReset       ChatEventType = "chat_reset"
)

// ChatEvent is a lifecycle notification emitted by the session manager.
type ChatEvent struct {
	Type      ChatEventType `json:"type"`
	SessionID string        `json:"session_id,omitempty"`
	Persona   string        `json:"persona,omitempty"`
	Detail    string        `json:"detail,omitempty"`
	At        time.Time     `json:"at"`
}

// EventSink receives chat events. Implementations must not block for long.
type EventSink interface {
	Publish(ctx context.Context, ev ChatEvent) error
}
