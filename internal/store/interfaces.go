package store

import (
	"context"
)

// KVStore is the durable local byte store the queue and snapshot stores
// persist through. Implementations must be safe for use from a single writer;
// the application guarantees there is never more than one.
type KVStore interface {
	// Get returns the value stored under key. ok is false when the key is
	// absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Put stores value under key, overwriting any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}
