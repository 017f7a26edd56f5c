package boltdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/stockkeeper/internal/client/storage"
)

// Save serializes value to JSON and stores it under key
func (s *Storage) Save(ctx context.Context, key string, value any) error {
	if s.db == nil {
		return storage.NewStorageError("save", key, storage.ErrStorageClosed)
	}

	s.logger.DebugContext(ctx, "Saving key", "key", key)

	// Сериализуем значение в JSON
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving key", "key", key, "error", err)
		return storage.NewStorageError("save", key, fmt.Errorf("failed to marshal value: %w", err))
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketKV)
		if bucket == nil {
			return fmt.Errorf("kv bucket not found")
		}
		return bucket.Put([]byte(key), data)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving key", "key", key, "error", err)
		return storage.NewStorageError("save", key, err)
	}

	return nil
}

// Load reads the value under key into dst.
// Returns false if the key is absent or the stored value cannot be decoded
func (s *Storage) Load(ctx context.Context, key string, dst any) bool {
	if s.db == nil {
		s.logger.WarnContext(ctx, "Load on closed storage", "key", key)
		return false
	}

	s.logger.DebugContext(ctx, "Loading key", "key", key)

	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketKV)
		if bucket == nil {
			return fmt.Errorf("kv bucket not found")
		}

		raw := bucket.Get([]byte(key))
		if raw == nil {
			return storage.ErrKeyNotFound
		}

		// Значение валидно только внутри транзакции - копируем
		data = make([]byte, len(raw))
		copy(data, raw)
		return nil
	})
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			s.logger.WarnContext(ctx, "Error loading key", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		// Поврежденное значение считаем отсутствующим (холодный старт)
		s.logger.WarnContext(ctx, "Error decoding key", "key", key, "error", err)
		return false
	}

	return true
}

// Remove deletes the key
func (s *Storage) Remove(ctx context.Context, key string) error {
	if s.db == nil {
		return storage.NewStorageError("remove", key, storage.ErrStorageClosed)
	}

	s.logger.DebugContext(ctx, "Removing key", "key", key)

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketKV)
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(key))
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error removing key", "key", key, "error", err)
		return storage.NewStorageError("remove", key, err)
	}

	return nil
}

// Clear removes all keys from storage
func (s *Storage) Clear(ctx context.Context) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	s.logger.InfoContext(ctx, "Clearing all storage")

	err := s.db.Update(func(tx *bbolt.Tx) error {
		// Удаляем bucket полностью
		if err := tx.DeleteBucket(bucketKV); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return fmt.Errorf("failed to delete bucket: %w", err)
		}

		// Создаем заново пустой bucket
		if _, err := tx.CreateBucket(bucketKV); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}

		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error clearing storage", "error", err)
		return fmt.Errorf("clear transaction failed: %w", err)
	}

	return nil
}
