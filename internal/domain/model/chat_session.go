package model

import (
	"time"
	"unicode/utf8"
)

const (
	// TitleMaxRunes is how much of the first user message a session title keeps.
	TitleMaxRunes = 30
	// DefaultTitle is used while a conversation has no user message.
	DefaultTitle = "New Chat"

	timestampLayout = "Jan 02, 15:04"
)

// ConversationSession is a persisted conversation with one selected persona.
type ConversationSession struct {
	ID              string
	Title           string
	Messages        []Message
	SelectedPersona PersonaID
	CreatedAt       time.Time
}

// NewConversationSession builds a session and derives its title from msgs.
func NewConversationSession(id string, msgs []Message, persona PersonaID, createdAt time.Time) *ConversationSession {
	cp := make([]Message, len(msgs))
	copy(cp, msgs)
	return &ConversationSession{
		ID:              id,
		Title:           GenerateTitle(cp),
		Messages:        cp,
		SelectedPersona: persona,
		CreatedAt:       createdAt,
	}
}

// GenerateTitle returns the first user message, cut to TitleMaxRunes with a
// trailing "..." when longer.
func GenerateTitle(msgs []Message) string {
	for _, m := range msgs {
		if m.Role != RoleUser {
			continue
		}
		if utf8.RuneCountInString(m.Content) <= TitleMaxRunes {
			return m.Content
		}
		return string([]rune(m.Content)[:TitleMaxRunes]) + "..."
	}
	return DefaultTitle
}

// FormatTimestamp renders CreatedAt the way session listings show it.
func (s *ConversationSession) FormatTimestamp() string {
	return s.CreatedAt.Local().Format(timestampLayout)
}

// Clone returns a deep copy of the session.
func (s *ConversationSession) Clone() *ConversationSession {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Messages = make([]Message, len(s.Messages))
	copy(cp.Messages, s.Messages)
	return &cp
}
