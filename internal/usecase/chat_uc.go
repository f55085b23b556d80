// File: internal/usecase/chat_uc.go
package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"persona-chat/internal/domain"
	"persona-chat/internal/domain/model"
	"persona-chat/internal/domain/ports/adapter"
	"persona-chat/internal/domain/ports/repository"
	"persona-chat/internal/infra/logging"
	"persona-chat/internal/infra/metrics"
)

// Compile-time check
var _ ChatUseCase = (*ChatManager)(nil)

// ChatUseCase drives one live conversation with a selectable persona.
type ChatUseCase interface {
	SendMessage(ctx context.Context, text string) error
	SelectPersona(ctx context.Context, id model.PersonaID) error
	StartNewChat(ctx context.Context) error
	ResetConversation()
	LoadSession(ctx context.Context, id string) error
	DeleteSession(ctx context.Context, id string) error
	ListSessions(ctx context.Context) ([]*model.ConversationSession, error)
	Snapshot() ChatState
	Subscribe() (<-chan ChatState, func())
	ClearError()
	Close(ctx context.Context) error
}

// PersonaCatalog is the read side of the persona table.
type PersonaCatalog interface {
	Get(id model.PersonaID) model.Persona
	ContextPromptFor(id model.PersonaID) string
	Default() model.PersonaID
}

// Persister runs session saves off the caller's path. Flush waits for
// everything submitted so far.
type Persister interface {
	Submit(ctx context.Context, task func(ctx context.Context) error) error
	Flush(ctx context.Context) error
}

// ChatOptions carries the manager's collaborators. Zero values pick inline
// saves, no events, a no-op logger, real sleeps and the wall clock.
type ChatOptions struct {
	APIKey    string
	Persister Persister
	Events    adapter.EventSink
	Logger    *zerolog.Logger
	Sleep     func(ctx context.Context, d time.Duration) error
	Now       func() time.Time
	NewID     func() string
}

// ChatManager owns the canonical live state. One mutex guards it; network
// calls, backoff waits and typing steps run without holding it.
type ChatManager struct {
	sessions repository.SessionStore
	ai       adapter.CompletionClient
	catalog  PersonaCatalog

	apiKey    string
	persister Persister
	events    adapter.EventSink
	log       *zerolog.Logger
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time
	newID     func() string

	mu        sync.Mutex
	state     ChatState
	createdAt time.Time
	subs      subscribers
	closed    bool
}

func NewChatUseCase(sessions repository.SessionStore, ai adapter.CompletionClient, catalog PersonaCatalog, opts ChatOptions) *ChatManager {
	m := &ChatManager{
		sessions:  sessions,
		ai:        ai,
		catalog:   catalog,
		apiKey:    opts.APIKey,
		persister: opts.Persister,
		events:    opts.Events,
		log:       opts.Logger,
		sleep:     opts.Sleep,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if m.log == nil {
		m.log = logging.Nop()
	}
	if m.sleep == nil {
		m.sleep = sleepCtx
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	m.state.Persona = catalog.Default()
	return m
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendMessage runs one full turn: shortcut or remote call, then playback.
// It blocks until the turn ends; shells run it on its own goroutine. The
// returned error is an *Advisory (or the ctx error on teardown); the same
// advisory is placed in the state's error slot.
func (m *ChatManager) SendMessage(ctx context.Context, text string) error {
	traceID := logging.NewTraceID()
	ctx = logging.WithTraceID(ctx, traceID)

	m.mu.Lock()
	if m.state.Phase != PhaseIdle {
		adv := m.rejectBusyLocked()
		m.mu.Unlock()
		return adv
	}
	m.state.Err = nil
	m.state.Phase = PhaseAwaitingResponse
	m.state.Loading = true
	persona := m.state.Persona
	ctx = logging.WithSessID(ctx, m.state.SessionID)

	if isNameQuery(text) {
		reply := nameReply(m.catalog.Get(persona))
		m.state.Messages = append(m.state.Messages, model.NewUserMessage(text))
		m.enterTypingLocked()
		m.mu.Unlock()
		metrics.IncChatSend("shortcut")
		return m.playback(ctx, reply)
	}
	m.publishLocked()
	m.mu.Unlock()

	log := logging.With(ctx, m.log)
	log.Debug().Str("persona", string(persona)).Str("text", logging.Redact(text, false)).Msg("send")

	prompt := buildPrompt(m.catalog.ContextPromptFor(persona), text)
	reply, err := m.completeWithRetry(ctx, prompt)

	m.mu.Lock()
	if err != nil {
		adv := classify(err)
		m.state.Phase = PhaseIdle
		m.state.Loading = false
		m.state.Err = adv
		sessionID := m.state.SessionID
		m.publishLocked()
		m.mu.Unlock()

		log.Warn().Err(err).Str("advisory", string(adv.Kind)).Msg("send failed")
		metrics.IncChatSend(string(adv.Kind))
		m.emit(ctx, adapter.EventSendFailed, sessionID, persona, adv.Message)
		return adv
	}
	if reply == "" {
		reply = FallbackReply
	}
	m.state.Messages = append(m.state.Messages, model.NewUserMessage(text))
	m.enterTypingLocked()
	m.mu.Unlock()

	metrics.IncChatSend("ok")
	return m.playback(ctx, reply)
}

func (m *ChatManager) rejectBusyLocked() *Advisory {
	adv := busyAdvisory()
	m.state.Err = adv
	m.publishLocked()
	metrics.IncChatSend("busy")
	return adv
}

// classify maps a completion failure to the advisory shown to the user.
func classify(err error) *Advisory {
	var hf *adapter.HTTPFailure
	if errors.As(err, &hf) {
		if hf.RateLimited() {
			return rateLimitedAdvisory()
		}
		msg := hf.Message
		if msg == "" {
			msg = hf.Detail
		}
		return remoteFailureAdvisory(hf.StatusCode, msg)
	}
	return transportAdvisory(err.Error())
}

// SelectPersona saves the current conversation, then switches persona for
// the following turns. Messages are kept. Unknown ids resolve to the
// catalog's fallback persona.
func (m *ChatManager) SelectPersona(ctx context.Context, id model.PersonaID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Phase != PhaseIdle {
		return m.rejectBusyLocked()
	}
	id = m.catalog.Get(id).ID
	m.saveCurrentLocked(ctx)
	m.state.Persona = id
	m.publishLocked()
	m.emit(ctx, adapter.EventPersonaSelected, m.state.SessionID, id, "")
	return nil
}

// StartNewChat saves the current conversation and resets live state.
func (m *ChatManager) StartNewChat(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Phase != PhaseIdle {
		return m.rejectBusyLocked()
	}
	m.saveCurrentLocked(ctx)
	m.resetLocked(ctx)
	return nil
}

// ResetConversation clears live state without saving it. It is ignored
// while a turn is in flight.
func (m *ChatManager) ResetConversation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Phase != PhaseIdle {
		m.rejectBusyLocked()
		return
	}
	m.resetLocked(context.Background())
}

func (m *ChatManager) resetLocked(ctx context.Context) {
	m.state = ChatState{
		Persona:    m.catalog.Default(),
		ResetCount: m.state.ResetCount + 1,
	}
	m.createdAt = time.Time{}
	m.publishLocked()
	m.emit(ctx, adapter.EventChatReset, "", m.state.Persona, "")
}

// LoadSession saves the current conversation and replaces live state with
// the stored one. An unknown id returns domain.ErrNotFound.
func (m *ChatManager) LoadSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Phase != PhaseIdle {
		return m.rejectBusyLocked()
	}
	m.saveCurrentLocked(ctx)
	m.flushLocked(ctx)

	s, err := m.sessions.Load(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logging.With(ctx, m.log).Error().Err(err).Str("session_id", id).Msg("load session")
		}
		return err
	}
	m.state.Messages = append([]model.Message(nil), s.Messages...)
	m.state.Persona = s.SelectedPersona
	m.state.SessionID = s.ID
	m.state.Err = nil
	m.state.Typing = false
	m.state.TypingText = ""
	m.createdAt = s.CreatedAt
	m.publishLocked()
	m.emit(ctx, adapter.EventSessionLoaded, s.ID, s.SelectedPersona, "")
	return nil
}

// DeleteSession removes a stored session. Deleting the active one resets
// live state without saving it again.
func (m *ChatManager) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := id != "" && id == m.state.SessionID
	if active && m.state.Phase != PhaseIdle {
		return m.rejectBusyLocked()
	}
	m.flushLocked(ctx)
	if err := m.sessions.Delete(ctx, id); err != nil {
		logging.With(ctx, m.log).Error().Err(err).Str("session_id", id).Msg("delete session")
		return err
	}
	m.emit(ctx, adapter.EventSessionDeleted, id, "", "")
	if active {
		m.resetLocked(ctx)
	}
	return nil
}

// ListSessions returns stored sessions, most recent first.
func (m *ChatManager) ListSessions(ctx context.Context) ([]*model.ConversationSession, error) {
	if m.persister != nil {
		if err := m.persister.Flush(ctx); err != nil {
			return nil, err
		}
	}
	return m.sessions.LoadAll(ctx)
}

// Snapshot returns a deep copy of the live state.
func (m *ChatManager) Snapshot() ChatState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.snapshot()
}

// Subscribe returns a channel that always holds the latest state not yet
// read, starting with the current one. Call cancel to unsubscribe.
func (m *ChatManager) Subscribe() (<-chan ChatState, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ch := m.subs.add()
	ch <- m.state.snapshot()
	if m.closed {
		m.subs.remove(id)
		return ch, func() {}
	}
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.subs.remove(id)
		})
	}
}

// ClearError acknowledges the advisory slot.
func (m *ChatManager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Err == nil {
		return
	}
	m.state.Err = nil
	m.publishLocked()
}

// Close saves a non-empty conversation, waits for pending saves and closes
// subscriber channels. A send still in flight is not waited for; cancel its
// ctx first.
func (m *ChatManager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	if m.state.Phase == PhaseIdle {
		m.saveCurrentLocked(ctx)
	}
	var err error
	if m.persister != nil {
		err = m.persister.Flush(ctx)
	}
	m.subs.closeAll()
	return err
}

func (m *ChatManager) enterTypingLocked() {
	m.state.Phase = PhaseTyping
	m.state.Loading = false
	m.state.Typing = true
	m.state.TypingText = ""
	m.publishLocked()
}

func (m *ChatManager) publishLocked() {
	if m.closed {
		return
	}
	m.subs.broadcast(m.state)
}

// saveCurrentLocked persists a non-empty live conversation, assigning a
// session id on first save.
func (m *ChatManager) saveCurrentLocked(ctx context.Context) {
	if len(m.state.Messages) == 0 {
		return
	}
	if m.state.SessionID == "" {
		m.state.SessionID = m.newID()
		m.createdAt = m.now()
		m.publishLocked()
	}
	session := model.NewConversationSession(m.state.SessionID, m.state.Messages, m.state.Persona, m.createdAt)
	m.persist(ctx, session)
}

func (m *ChatManager) persist(ctx context.Context, session *model.ConversationSession) {
	save := func(ctx context.Context) error {
		if err := m.sessions.Save(ctx, session); err != nil {
			logging.With(ctx, m.log).Error().Err(err).Str("session_id", session.ID).Msg("save session")
			return nil
		}
		m.emit(ctx, adapter.EventSessionSaved, session.ID, session.SelectedPersona, session.Title)
		return nil
	}
	if m.persister != nil {
		if err := m.persister.Submit(context.WithoutCancel(ctx), save); err == nil {
			return
		}
	}
	_ = save(context.WithoutCancel(ctx))
}

func (m *ChatManager) flushLocked(ctx context.Context) {
	if m.persister == nil {
		return
	}
	if err := m.persister.Flush(ctx); err != nil {
		logging.With(ctx, m.log).Warn().Err(err).Msg("flush pending saves")
	}
}

func (m *ChatManager) emit(ctx context.Context, t adapter.ChatEventType, sessionID string, persona model.PersonaID, detail string) {
	if m.events == nil {
		return
	}
	ev := adapter.ChatEvent{
		Type:      t,
		SessionID: sessionID,
		Persona:   string(persona),
		Detail:    detail,
		At:        m.now(),
	}
	if err := m.events.Publish(ctx, ev); err != nil {
		logging.With(ctx, m.log).Warn().Err(err).Str("event_type", string(t)).Msg("publish chat event")
	}
}
