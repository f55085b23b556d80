// File: internal/infra/security/encryption_service.go
package security

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"persona-chat/internal/domain"
	"persona-chat/internal/domain/ports/repository"
)

// EncryptionService seals values with AES-GCM and a random nonce per value.
type EncryptionService struct {
	gcm cipher.AEAD
}

// NewEncryptionService needs a 16, 24, or 32 byte key (AES-128/192/256).
func NewEncryptionService(key string) (*EncryptionService, error) {
	k := []byte(key)
	switch len(k) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("encryption key must be 16, 24, or 32 bytes; got %d", len(k))
	}
	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return &EncryptionService{gcm: gcm}, nil
}

// Encrypt returns base64(nonce || ciphertext). The key name is bound as
// additional data so a record cannot be replayed under another key.
func (e *EncryptionService) Encrypt(plaintext, aad string) (string, error) {
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}
	ct := e.gcm.Seal(nonce, nonce, []byte(plaintext), []byte(aad))
	return base64.StdEncoding.EncodeToString(ct), nil
}

// Decrypt reverses Encrypt. Any failure wraps domain.ErrCorruptData.
func (e *EncryptionService) Decrypt(b64, aad string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("%w: base64 decode: %v", domain.ErrCorruptData, err)
	}
	ns := e.gcm.NonceSize()
	if len(data) < ns {
		return "", fmt.Errorf("%w: ciphertext too short", domain.ErrCorruptData)
	}
	nonce, ct := data[:ns], data[ns:]
	pt, err := e.gcm.Open(nil, nonce, ct, []byte(aad))
	if err != nil {
		return "", fmt.Errorf("%w: gcm open: %v", domain.ErrCorruptData, err)
	}
	return string(pt), nil
}

var _ repository.KVStore = (*EncryptedKV)(nil)

// EncryptedKV encrypts values at rest on top of any KVStore.
type EncryptedKV struct {
	inner repository.KVStore
	enc   *EncryptionService
}

func NewEncryptedKV(inner repository.KVStore, enc *EncryptionService) *EncryptedKV {
	return &EncryptedKV{inner: inner, enc: enc}
}

func (k *EncryptedKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, found, err := k.inner.Get(ctx, key)
	if err != nil || !found {
		return v, found, err
	}
	plain, err := k.enc.Decrypt(v, key)
	if err != nil {
		return "", true, err
	}
	return plain, true, nil
}

func (k *EncryptedKV) Set(ctx context.Context, key, value string) error {
	sealed, err := k.enc.Encrypt(value, key)
	if err != nil {
		return err
	}
	return k.inner.Set(ctx, key, sealed)
}
