package repositories

import "context"

// KVStore is the private ledger's key-value surface.
// Put overwrites any existing value under key (last write wins).
// Get returns domain.ErrNotFound when no value exists.
type KVStore interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}
