// Package cache stores relevance assessments between requests.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("key not found in cache")
	ErrInvalidValue = errors.New("invalid value for cache")
	ErrClosed       = errors.New("cache is closed")
	ErrInvalidKey   = errors.New("invalid cache key")
)

// Cache is a key/value store for encoded values. Values passed to Set must be a
// string, a byte slice or an encoding.BinaryMarshaler; Get accepts *string, *[]byte
// or an encoding.BinaryUnmarshaler.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Get(ctx context.Context, key string, value interface{}) error

	Delete(ctx context.Context, key string) error

	Clear(ctx context.Context) error

	Close() error
}

type Options struct {
	// DefaultTTL applies when Set is called with a zero ttl. Zero keeps entries forever.
	DefaultTTL time.Duration

	RedisURL string

	RedisPassword string

	RedisDB int

	// KeyPrefix namespaces every key written by this process.
	KeyPrefix string
}

func DefaultOptions() Options {
	return Options{
		KeyPrefix: "job-finder:score:",
	}
}
