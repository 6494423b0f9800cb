package ports

import "context"

// Storage is a string key/value medium that outlives the process, the
// stand-in for browser persistent storage.
type Storage interface {
	// Get returns the value stored under key. ok is false when key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Delete removes all keys in a single operation.
	Delete(ctx context.Context, keys ...string) error
	Close(ctx context.Context) error
}
