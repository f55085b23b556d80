package redis

import (
	"context"
	"fmt"

	"persona-chat/internal/domain/ports/repository"
)

const keyPrefix = "personachat:"

var _ repository.KVStore = (*KVStore)(nil)

// KVStore keeps records as plain redis strings without expiry.
type KVStore struct {
	client RedisClient
}

func NewKVStore(client RedisClient) *KVStore {
	return &KVStore{client: client}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, found, err := s.client.Get(ctx, keyPrefix+key)
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, found, nil
}

// Set relies on SET replacing the value atomically.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, keyPrefix+key, value, 0); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
