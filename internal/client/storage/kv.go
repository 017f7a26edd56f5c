package storage

import (
	"context"
)

//go:generate moq -out kvstore_mock.go . KVStore

// KVStore defines the durable key-value store used by the client.
// It is the sole persistence primitive: values are JSON blobs under string keys.
// There is no atomicity across keys.
type KVStore interface {
	// Save serializes value to JSON and writes it under key.
	// Returns *StorageError on failure
	Save(ctx context.Context, key string, value any) error

	// Load deserializes the value stored under key into dst.
	// Any read or parse failure is treated as absent (cold start) and returns false
	Load(ctx context.Context, key string, dst any) bool

	// Remove deletes the key. Best-effort
	Remove(ctx context.Context, key string) error

	// Clear removes all keys. Best-effort
	Clear(ctx context.Context) error
}

// Persisted keys of the client state.
const (
	KeySupplierName = "supplier_name"
	KeyItems        = "items_cache"
	KeyOfflineQueue = "offline_queue"
)
