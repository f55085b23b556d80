package security

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-chat/internal/domain"
	"persona-chat/internal/infra/store"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestEncryptionService_RoundTrip(t *testing.T) {
	svc, err := NewEncryptionService(testKey)
	require.NoError(t, err)

	ct, err := svc.Encrypt("hello", "k")
	require.NoError(t, err)
	assert.NotContains(t, ct, "hello")

	pt, err := svc.Decrypt(ct, "k")
	require.NoError(t, err)
	assert.Equal(t, "hello", pt)

	_, err = svc.Decrypt(ct, "other-key")
	assert.ErrorIs(t, err, domain.ErrCorruptData)

	_, err = svc.Decrypt("%%%", "k")
	assert.ErrorIs(t, err, domain.ErrCorruptData)
}

func TestNewEncryptionService_KeyLength(t *testing.T) {
	_, err := NewEncryptionService("short")
	assert.Error(t, err)
	for _, n := range []int{16, 24, 32} {
		_, err := NewEncryptionService(strings.Repeat("k", n))
		assert.NoError(t, err)
	}
}

func TestEncryptedKV_WithSessionStore(t *testing.T) {
	ctx := context.Background()
	raw := store.NewMemoryKV()
	svc, err := NewEncryptionService(testKey)
	require.NoError(t, err)
	kv := NewEncryptedKV(raw, svc)

	require.NoError(t, kv.Set(ctx, "chat_sessions", `[]`))
	stored, _, err := raw.Get(ctx, "chat_sessions")
	require.NoError(t, err)
	assert.NotEqual(t, `[]`, stored)

	v, found, err := kv.Get(ctx, "chat_sessions")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, v)

	// A different key cannot read the record; the store treats it as empty.
	other, err := NewEncryptionService(strings.Repeat("x", 32))
	require.NoError(t, err)
	sessions, err := store.NewSessionStore(NewEncryptedKV(raw, other)).LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
