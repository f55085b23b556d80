package redis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"persona-chat/internal/config"
	"persona-chat/internal/domain"
	"persona-chat/internal/domain/model"
	"persona-chat/internal/infra/store"
)

func RedisTestConfig() config.RedisConfig {
	return config.RedisConfig{
		URL: "localhost:6379",
		DB:  1,
	}
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	cfg := RedisTestConfig()
	cli, err := NewClient(ctx, &cfg)
	if err != nil {
		t.Skip("redis not available:", err)
	}
	t.Cleanup(func() { _ = cli.Close() })
	return cli
}

func TestKVStore_RoundTrip(t *testing.T) {
	cli := newTestClient(t)
	ctx := context.Background()
	kv := NewKVStore(cli)
	key := "test:" + uuid.NewString()
	t.Cleanup(func() { _ = cli.Del(context.Background(), keyPrefix+key) })

	if _, found, err := kv.Get(ctx, key); err != nil || found {
		t.Fatalf("expected missing key, found=%v err=%v", found, err)
	}
	if err := kv.Set(ctx, key, "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, found, err := kv.Get(ctx, key)
	if err != nil || !found || v != "v1" {
		t.Fatalf("unexpected get: %q %v %v", v, found, err)
	}
}

func TestLocker_ExclusiveUntilUnlocked(t *testing.T) {
	cli := newTestClient(t)
	ctx := context.Background()
	l := NewLocker(cli)
	l.tries, l.wait = 2, 10*time.Millisecond
	key := "lock:test:" + uuid.NewString()

	tok, err := l.TryLock(ctx, key, 5*time.Second)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	if _, err := l.TryLock(ctx, key, 5*time.Second); err != domain.ErrLocked {
		t.Fatalf("expected ErrLocked while held, got %v", err)
	}
	if err := l.Unlock(ctx, key, tok); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	tok2, err := l.TryLock(ctx, key, 5*time.Second)
	if err != nil {
		t.Fatalf("relock: %v", err)
	}
	_ = l.Unlock(ctx, key, tok2)
}

func TestSessionStore_OnRedis(t *testing.T) {
	cli := newTestClient(t)
	ctx := context.Background()
	t.Cleanup(func() { _ = cli.Del(context.Background(), keyPrefix+store.SessionsKey) })
	_ = cli.Del(ctx, keyPrefix+store.SessionsKey)

	s := store.NewSessionStore(NewKVStore(cli), store.WithLocker(NewLocker(cli)), store.WithBackendName("redis"))
	sess := model.NewConversationSession(uuid.NewString(), []model.Message{model.NewUserMessage("hey")}, model.PersonaYusuke, time.Now())
	if err := s.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx, sess.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.SelectedPersona != model.PersonaYusuke || got.Title != "hey" {
		t.Fatalf("unexpected session %+v", got)
	}
}
