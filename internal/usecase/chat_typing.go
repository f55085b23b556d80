package usecase

import (
	"context"
	"time"

	"persona-chat/internal/domain/model"
	"persona-chat/internal/domain/ports/adapter"
	"persona-chat/internal/infra/logging"
)

const (
	// TypingDuration is the total playback time of a reply.
	TypingDuration = 1500 * time.Millisecond
	// TypingFloor is the single pause taken for an empty reply.
	TypingFloor = 50 * time.Millisecond
)

// playback reveals text one rune at a time, then appends it as the current
// persona's message, returns to Idle and saves. A cancelled ctx abandons the
// reply without appending it.
func (m *ChatManager) playback(ctx context.Context, text string) error {
	runes := []rune(text)
	if len(runes) == 0 {
		if err := m.sleep(ctx, TypingFloor); err != nil {
			return m.abandonTyping(ctx, err)
		}
	} else {
		step := TypingDuration / time.Duration(len(runes))
		for i := 1; i <= len(runes); i++ {
			m.mu.Lock()
			m.state.TypingText = string(runes[:i])
			m.publishLocked()
			m.mu.Unlock()
			if err := m.sleep(ctx, step); err != nil {
				return m.abandonTyping(ctx, err)
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	persona := m.state.Persona
	m.state.Messages = append(m.state.Messages, model.NewAssistantMessage(text, persona))
	m.state.Phase = PhaseIdle
	m.state.Typing = false
	m.state.TypingText = ""
	m.publishLocked()
	m.saveCurrentLocked(ctx)
	m.emit(ctx, adapter.EventSendSucceeded, m.state.SessionID, persona, "")
	return nil
}

func (m *ChatManager) abandonTyping(ctx context.Context, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Phase = PhaseIdle
	m.state.Typing = false
	m.state.TypingText = ""
	m.publishLocked()
	logging.With(ctx, m.log).Debug().Err(err).Msg("typing abandoned")
	return err
}
