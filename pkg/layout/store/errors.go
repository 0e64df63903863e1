package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no layout has the requested id.
	ErrNotFound = errors.New("layout not found")

	// ErrReadOnly is returned by writes to a read-only backend.
	ErrReadOnly = errors.New("layout store is read-only")

	// ErrInvalidLayout is returned when a layout cannot be stored.
	ErrInvalidLayout = errors.New("invalid layout")

	errDuplicateID = errors.New("duplicate layout id")
)

// StorageError represents a failure of the storage backend.
type StorageError struct {
	Backend   string // "memory", "file", "sqlite", "redis"
	Operation string // "get", "list", "put", "delete", ...
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}
