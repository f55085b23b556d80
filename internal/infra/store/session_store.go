// Package store persists conversation sessions into a durable string store.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"persona-chat/internal/domain"
	"persona-chat/internal/domain/model"
	"persona-chat/internal/domain/ports/repository"
	"persona-chat/internal/infra/logging"
	"persona-chat/internal/infra/metrics"
)

const (
	// MaxSessions is the hard cap on stored sessions; the oldest are evicted.
	MaxSessions = 50

	SessionsKey = "chat_sessions"

	lockTTL = 5 * time.Second
)

var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore keeps every session in a single KV record, most recent first.
type SessionStore struct {
	mu      sync.Mutex
	kv      repository.KVStore
	locker  repository.Locker
	backend string
	log     *zerolog.Logger
}

type Option func(*SessionStore)

// WithLocker serialises writers across processes sharing the backend.
func WithLocker(l repository.Locker) Option {
	return func(s *SessionStore) { s.locker = l }
}

func WithLogger(l *zerolog.Logger) Option {
	return func(s *SessionStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithBackendName sets the label used for metrics and logs.
func WithBackendName(name string) Option {
	return func(s *SessionStore) { s.backend = name }
}

func NewSessionStore(kv repository.KVStore, opts ...Option) *SessionStore {
	s := &SessionStore{kv: kv, backend: "kv", log: logging.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *SessionStore) Save(ctx context.Context, session *model.ConversationSession) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidArgument
	}
	defer logging.TraceDuration(s.log, "SessionStore.Save")()
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock(ctx)
	if err != nil {
		metrics.IncStoreOp(s.backend, "save", "error")
		return err
	}
	defer unlock()

	sessions, err := s.read(ctx)
	if err != nil {
		metrics.IncStoreOp(s.backend, "save", "error")
		return err
	}
	out := make([]*model.ConversationSession, 0, len(sessions)+1)
	out = append(out, session)
	for _, existing := range sessions {
		if existing.ID != session.ID {
			out = append(out, existing)
		}
	}
	if len(out) > MaxSessions {
		out = out[:MaxSessions]
	}
	if err := s.write(ctx, out); err != nil {
		metrics.IncStoreOp(s.backend, "save", "error")
		return err
	}
	metrics.IncStoreOp(s.backend, "save", "ok")
	s.log.Debug().Str("session_id", session.ID).Int("stored", len(out)).Msg("session saved")
	return nil
}

func (s *SessionStore) LoadAll(ctx context.Context) ([]*model.ConversationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := s.read(ctx)
	if err != nil {
		metrics.IncStoreOp(s.backend, "load_all", "error")
		return nil, err
	}
	metrics.IncStoreOp(s.backend, "load_all", "ok")
	return out, nil
}

func (s *SessionStore) Load(ctx context.Context, id string) (*model.ConversationSession, error) {
	all, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, sess := range all {
		if sess.ID == id {
			return sess, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock(ctx)
	if err != nil {
		metrics.IncStoreOp(s.backend, "delete", "error")
		return err
	}
	defer unlock()

	sessions, err := s.read(ctx)
	if err != nil {
		metrics.IncStoreOp(s.backend, "delete", "error")
		return err
	}
	kept := sessions[:0]
	for _, sess := range sessions {
		if sess.ID != id {
			kept = append(kept, sess)
		}
	}
	if len(kept) == len(sessions) {
		return nil
	}
	if err := s.write(ctx, kept); err != nil {
		metrics.IncStoreOp(s.backend, "delete", "error")
		return err
	}
	metrics.IncStoreOp(s.backend, "delete", "ok")
	return nil
}

// read must be called with s.mu held. Corrupt records read as empty.
func (s *SessionStore) read(ctx context.Context) ([]*model.ConversationSession, error) {
	raw, found, err := s.kv.Get(ctx, SessionsKey)
	if err != nil {
		if errors.Is(err, domain.ErrCorruptData) {
			s.corrupt(err)
			return nil, nil
		}
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	if !found || raw == "" {
		return nil, nil
	}
	sessions, err := decodeSessions(raw)
	if err != nil {
		s.corrupt(err)
		return nil, nil
	}
	return sessions, nil
}

func (s *SessionStore) write(ctx context.Context, sessions []*model.ConversationSession) error {
	raw, err := encodeSessions(sessions)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	if err := s.kv.Set(ctx, SessionsKey, raw); err != nil {
		return fmt.Errorf("write sessions: %w", err)
	}
	return nil
}

func (s *SessionStore) corrupt(err error) {
	metrics.IncStoreOp(s.backend, "read", "corrupt")
	s.log.Warn().Err(err).Str("backend", s.backend).Msg("stored sessions unreadable; treating as empty")
}

func (s *SessionStore) lock(ctx context.Context) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	key := "lock:" + SessionsKey
	token, err := s.locker.TryLock(ctx, key, lockTTL)
	if err != nil {
		return nil, fmt.Errorf("lock sessions: %w", err)
	}
	return func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			s.log.Warn().Err(err).Msg("unlock sessions")
		}
	}, nil
}

// ---- wire format ----
// Field names match the chat history records written by the mobile app.

type storedMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Sender  string `json:"sender,omitempty"`
}

type storedSession struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Messages          []storedMessage `json:"messages"`
	SelectedCharacter string          `json:"selectedCharacter"`
	Timestamp         int64           `json:"timestamp"`
}

func encodeSessions(sessions []*model.ConversationSession) (string, error) {
	out := make([]storedSession, 0, len(sessions))
	for _, s := range sessions {
		rec := storedSession{
			ID:                s.ID,
			Title:             s.Title,
			Messages:          make([]storedMessage, 0, len(s.Messages)),
			SelectedCharacter: string(s.SelectedPersona),
			Timestamp:         s.CreatedAt.UnixMilli(),
		}
		for _, m := range s.Messages {
			rec.Messages = append(rec.Messages, storedMessage{
				Role:    string(m.Role),
				Content: m.Content,
				Sender:  string(m.Sender),
			})
		}
		out = append(out, rec)
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeSessions(raw string) ([]*model.ConversationSession, error) {
	var recs []storedSession
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, err
	}
	out := make([]*model.ConversationSession, 0, len(recs))
	for _, r := range recs {
		if r.ID == "" {
			return nil, fmt.Errorf("session without id")
		}
		msgs := make([]model.Message, 0, len(r.Messages))
		for _, m := range r.Messages {
			msg := model.Message{Role: model.Role(m.Role), Content: m.Content, Sender: model.PersonaID(m.Sender)}
			if msg.Role == model.RoleUser {
				msg.Sender = ""
			}
			msgs = append(msgs, msg)
		}
		title := r.Title
		if title == "" {
			title = model.GenerateTitle(msgs)
		}
		out = append(out, &model.ConversationSession{
			ID:              r.ID,
			Title:           title,
			Messages:        msgs,
			SelectedPersona: model.PersonaID(r.SelectedCharacter),
			CreatedAt:       time.UnixMilli(r.Timestamp),
		})
	}
	return out, nil
}
