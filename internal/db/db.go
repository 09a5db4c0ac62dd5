// Package db defines the key-value store contract used by the embedding
// cache tier. The recommendation engine itself is fully in-process; the
// store only persists computed embeddings across restarts.
package db

import (
	"context"
	"time"
)

// Store is the key-value storage facade.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides plain key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
