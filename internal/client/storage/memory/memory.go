// Package memory provides an in-process KVStore. Values are kept as JSON so
// that Load observes exactly what a durable store would return.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/iudanet/stockkeeper/internal/client/storage"
)

// Storage is a map-backed storage.KVStore
type Storage struct {
	data   map[string][]byte
	logger *slog.Logger
	mu     sync.RWMutex
}

// New creates an empty in-memory storage
func New(logger *slog.Logger) *Storage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{
		data:   make(map[string][]byte),
		logger: logger.With("category", "DB"),
	}
}

func (s *Storage) Save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return storage.NewStorageError("save", key, fmt.Errorf("failed to marshal value: %w", err))
	}

	s.mu.Lock()
	s.data[key] = data
	s.mu.Unlock()

	return nil
}

func (s *Storage) Load(ctx context.Context, key string, dst any) bool {
	s.mu.RLock()
	data, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.WarnContext(ctx, "Error decoding key", "key", key, "error", err)
		return false
	}

	return true
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()

	return nil
}

func (s *Storage) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.data = make(map[string][]byte)
	s.mu.Unlock()

	return nil
}

// Raw returns the stored JSON for key. Used by tests to inspect what was persisted
func (s *Storage) Raw(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[key]
	return data, ok
}

var _ storage.KVStore = (*Storage)(nil)
