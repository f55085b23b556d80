package usecase

import (
	"github.com/huandu/go-clone"

	"persona-chat/internal/domain/model"
)

// Phase is the live conversation's position in the send cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingResponse
	PhaseTyping
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingResponse:
		return "awaiting_response"
	case PhaseTyping:
		return "typing"
	default:
		return "idle"
	}
}

// ChatState is an immutable snapshot of the live conversation. Receivers
// own their copy.
type ChatState struct {
	Messages   []model.Message
	Persona    model.PersonaID
	Phase      Phase
	Loading    bool
	Typing     bool
	TypingText string
	Err        *Advisory
	SessionID  string
	ResetCount int
}

func (s ChatState) snapshot() ChatState {
	return clone.Clone(s).(ChatState)
}

// subscribers hold at most one pending snapshot each; a newer one replaces
// an unread older one.
type subscribers struct {
	next int
	subs map[int]chan ChatState
}

func (s *subscribers) add() (int, chan ChatState) {
	if s.subs == nil {
		s.subs = make(map[int]chan ChatState)
	}
	id := s.next
	s.next++
	ch := make(chan ChatState, 1)
	s.subs[id] = ch
	return id, ch
}

func (s *subscribers) remove(id int) {
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *subscribers) broadcast(st ChatState) {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- st.snapshot()
	}
}

func (s *subscribers) closeAll() {
	for id := range s.subs {
		s.remove(id)
	}
}
