package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrInvalidKey is returned for keys that are empty or escape the store.
var ErrInvalidKey = errors.New("invalid storage key")

// Storage holds user uploads such as profile photos. Keys are slash separated
// and never reused, so stored objects are immutable.
type Storage interface {
	// Put stores r under key. size is the expected length, -1 if unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// URL returns where clients can fetch key. Backends without signed URLs ignore expires.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Config selects and configures a storage backend.
type Config struct {
	Driver string      `mapstructure:"driver"` // "local", "s3"
	Local  LocalConfig `mapstructure:"local"`
	S3     S3Config    `mapstructure:"s3"`
}

// New creates the configured storage backend.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Storage(ctx, cfg.S3)
	case "local", "":
		return NewLocalStorage(cfg.Local)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
