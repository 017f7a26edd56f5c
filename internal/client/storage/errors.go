package storage

import (
	"errors"
	"fmt"
)

// Common client storage errors
var (
	// ErrKeyNotFound indicates that nothing is stored under the key
	ErrKeyNotFound = errors.New("key not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)

// StorageError описывает неудачную операцию записи в хранилище.
// Вызывающая сторона обязана пробросить ее наверх.
type StorageError struct {
	Err error
	Op  string
	Key string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err with the failed operation and key
func NewStorageError(op, key string, err error) error {
	return &StorageError{Op: op, Key: key, Err: err}
}
