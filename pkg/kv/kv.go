package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("kv: key not found")

// Store is the durable key-value port the storefront keeps its
// cross-request state behind (cart lines, discount, staged drafts).
// Implementations must make Set visible to a Get that follows it, so a
// write-through mutation is never lost to a crash of the caller.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}
