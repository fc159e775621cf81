package cache

import (
	"context"
	"errors"
	"time"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// CleanerCache caches public cleaner views by user ID.
type CleanerCache interface {
	Get(ctx context.Context, cleanerID string) (*domain.UserResponse, error)
	Set(ctx context.Context, cleanerID string, cleaner *domain.UserResponse, ttl time.Duration) error
	Delete(ctx context.Context, cleanerIDs ...string) error
}

// NoopCleanerCache always misses. Used when Redis is disabled.
type NoopCleanerCache struct{}

func (NoopCleanerCache) Get(context.Context, string) (*domain.UserResponse, error) {
	return nil, ErrCacheMiss
}

func (NoopCleanerCache) Set(context.Context, string, *domain.UserResponse, time.Duration) error {
	return nil
}

func (NoopCleanerCache) Delete(context.Context, ...string) error {
	return nil
}
