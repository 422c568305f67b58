// Package media deletes user-uploaded images from local disk or S3.
package media

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidKey is returned for keys that are empty or escape the store root.
var ErrInvalidKey = errors.New("invalid media key")

// Store deletes media objects by key.
type Store interface {
	// Delete removes the object at key. A missing object is not an error.
	Delete(ctx context.Context, key string) error
}

// Backend names accepted by New.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// Config selects and configures a media backend.
type Config struct {
	Backend  string
	LocalDir string
	S3       S3Config
}

// New creates the Store described by cfg.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendLocal:
		return NewLocalStore(cfg.LocalDir)
	case BackendS3:
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported media backend: %s", cfg.Backend)
	}
}
