package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/spigell/job-finder/internal/cache"
)

func TestKeyPrefix(t *testing.T) {
	c := New(cache.Options{RedisURL: "127.0.0.1:0", KeyPrefix: "jf:"})
	defer c.Close()

	if got := c.key("abc"); got != "jf:abc" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestSetValidatesBeforeNetwork(t *testing.T) {
	c := New(cache.Options{RedisURL: "127.0.0.1:0"})
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "", "x", 0); !errors.Is(err, cache.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if err := c.Set(ctx, "k", 3.14, 0); !errors.Is(err, cache.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}
