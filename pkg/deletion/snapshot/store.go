package snapshot

import (
	"context"
	"fmt"
	"time"
)

// Store loads and saves point-in-time copies of the deletion registry.
type Store interface {
	// Load returns the last saved snapshot, or an empty map if none exists.
	Load(ctx context.Context) (map[string]time.Time, error)

	// Save replaces the stored snapshot with entries.
	Save(ctx context.Context, entries map[string]time.Time) error

	// Close releases resources held by the store.
	Close() error
}

// Backend names accepted by New.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// New creates the Store for backend at path.
func New(backend, path string) (Store, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(path), nil
	case BackendSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unsupported snapshot backend: %s", backend)
	}
}

// SnapshotError represents a failure to read or write a snapshot.
type SnapshotError struct {
	Backend   string // "file" or "sqlite"
	Operation string // "load", "decode", "save", ...
	Path      string
	Cause     error
}

// Error implements the error interface.
func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot error [backend=%s, operation=%s, path=%s]: %v",
		e.Backend, e.Operation, e.Path, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *SnapshotError) Unwrap() error {
	return e.Cause
}

// NewSnapshotError creates a new SnapshotError.
func NewSnapshotError(backend, operation, path string, cause error) *SnapshotError {
	return &SnapshotError{
		Backend:   backend,
		Operation: operation,
		Path:      path,
		Cause:     cause,
	}
}
