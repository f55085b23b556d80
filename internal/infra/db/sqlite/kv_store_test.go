package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-chat/internal/domain/model"
	"persona-chat/internal/infra/store"
)

func openTemp(t *testing.T) (*KVStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "chat_history.db")
	kv, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv, path
}

func TestKVStore_GetSet(t *testing.T) {
	ctx := context.Background()
	kv, _ := openTemp(t)

	_, found, err := kv.Get(ctx, "chat_sessions")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Set(ctx, "chat_sessions", "[]"))
	require.NoError(t, kv.Set(ctx, "chat_sessions", `[{"id":"a"}]`))

	v, found, err := kv.Get(ctx, "chat_sessions")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"a"}]`, v)
}

func TestKVStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	kv, path := openTemp(t)

	s := store.NewSessionStore(kv, store.WithBackendName("sqlite"))
	sess := model.NewConversationSession("s1",
		[]model.Message{model.NewUserMessage("hi"), model.NewAssistantMessage("yo", model.PersonaRyuji)},
		model.PersonaRyuji, time.UnixMilli(1700000000000))
	require.NoError(t, s.Save(ctx, sess))
	require.NoError(t, kv.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := store.NewSessionStore(reopened).Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Title)
	assert.Equal(t, model.PersonaRyuji, got.SelectedPersona)
	assert.Equal(t, int64(1700000000000), got.CreatedAt.UnixMilli())
}
