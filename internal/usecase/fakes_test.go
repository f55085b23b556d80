package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"persona-chat/internal/domain/ports/adapter"
	"persona-chat/internal/infra/store"
	"persona-chat/internal/persona"
)

// ---- Fakes ----

type reply struct {
	text string
	err  error
}

// scriptedAI answers from a queue; the last entry repeats.
type scriptedAI struct {
	mu      sync.Mutex
	script  []reply
	calls   int
	prompts []string
	keys    []string
	gate    chan struct{} // when set, each call waits on it
	entered chan struct{}
}

func newScriptedAI(script ...reply) *scriptedAI {
	return &scriptedAI{script: script}
}

func (s *scriptedAI) Complete(ctx context.Context, apiKey, prompt string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.prompts = append(s.prompts, prompt)
	s.keys = append(s.keys, apiKey)
	i := s.calls - 1
	if i >= len(s.script) {
		i = len(s.script) - 1
	}
	r := s.script[i]
	gate, entered := s.gate, s.entered
	s.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return r.text, r.err
}

func (s *scriptedAI) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func rateLimited(after *time.Duration) reply {
	return reply{err: adapter.NewHTTPFailure(429, after, "quota")}
}

func ok(text string) reply { return reply{text: text} }

// recordingSleeper returns immediately and remembers every requested wait.
type recordingSleeper struct {
	mu     sync.Mutex
	waits  []time.Duration
	onWait func()
}

func (r *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.waits = append(r.waits, d)
	hook := r.onWait
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
	return ctx.Err()
}

func (r *recordingSleeper) all() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.waits...)
}

type recordingSink struct {
	mu     sync.Mutex
	events []adapter.ChatEvent
}

func (r *recordingSink) Publish(_ context.Context, ev adapter.ChatEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingSink) types() []adapter.ChatEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]adapter.ChatEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// failingKV fails every write.
type failingKV struct{ *store.MemoryKV }

func (failingKV) Set(context.Context, string, string) error { return errors.New("disk full") }

type harness struct {
	uc      *ChatManager
	ai      *scriptedAI
	store   *store.SessionStore
	sleeper *recordingSleeper
	events  *recordingSink
	catalog *persona.Catalog
}

var fixedNow = time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)

func newHarness(ai *scriptedAI, opts ...func(*ChatOptions)) *harness {
	h := &harness{
		ai:      ai,
		store:   store.NewSessionStore(store.NewMemoryKV()),
		sleeper: &recordingSleeper{},
		events:  &recordingSink{},
		catalog: persona.NewCatalog(),
	}
	n := 0
	o := ChatOptions{
		APIKey: "test-key",
		Events: h.events,
		Sleep:  h.sleeper.Sleep,
		Now:    func() time.Time { return fixedNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("session-%d", n)
		},
	}
	for _, fn := range opts {
		fn(&o)
	}
	h.uc = NewChatUseCase(h.store, ai, h.catalog, o)
	return h
}
