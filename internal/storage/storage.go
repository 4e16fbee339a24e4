package storage

import (
	"context"
	"errors"
	"time"
)

// Store-level errors.
var (
	// ErrKeyExists is returned when a Put would overwrite an existing
	// object. Submission keys are versioned and must never be replaced.
	ErrKeyExists = errors.New("object already exists for key")
	ErrNotFound  = errors.New("object not found")
)

// FileStore stores submitted file bytes and issues time-limited download
// links. Implementations must reject overwrites of existing keys.
type FileStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (int64, error)
	SignedURL(key string, ttl time.Duration) (string, error)
	// Remove deletes a stored object. Used to roll back a Put when the
	// accompanying database write fails; removing a missing key is not
	// an error.
	Remove(ctx context.Context, key string) error
}
