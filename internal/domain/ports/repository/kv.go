package repository

import (
	"context"
	"time"
)

// KVStore is the durable string store sessions are persisted into.
// Set must replace the value atomically: readers see the old or the new
// value, never a mix.
type KVStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Locker serialises writers that share a KVStore across processes.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
