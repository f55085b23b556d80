package model

// Role of a message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation. Sender is set only on assistant
// messages and records which persona produced it.
type Message struct {
	Role    Role
	Content string
	Sender  PersonaID
}

func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func NewAssistantMessage(content string, sender PersonaID) Message {
	return Message{Role: RoleAssistant, Content: content, Sender: sender}
}

// Valid reports whether the message respects the sender invariant.
func (m Message) Valid() bool {
	switch m.Role {
	case RoleUser:
		return m.Sender == ""
	case RoleAssistant:
		return true
	default:
		return false
	}
}
