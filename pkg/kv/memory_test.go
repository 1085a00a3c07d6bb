package kv

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set(ctx, "cart", `[]`, 0); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	got, err := store.Get(ctx, "cart")
	if err != nil || got != `[]` {
		t.Fatalf("unexpected get result: %q %v", got, err)
	}

	if err := store.Del(ctx, "cart"); err != nil {
		t.Fatalf("unexpected del error: %v", err)
	}
	if _, err := store.Get(ctx, "cart"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStoreSetNX(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	set, err := store.SetNX(ctx, "slot", "a", 0)
	if err != nil || !set {
		t.Fatalf("first SetNX should win: %v %v", set, err)
	}
	set, err = store.SetNX(ctx, "slot", "b", 0)
	if err != nil || set {
		t.Fatalf("second SetNX should lose: %v %v", set, err)
	}
	if got, _ := store.Get(ctx, "slot"); got != "a" {
		t.Fatalf("value should be untouched, got %q", got)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	current := time.Now()
	store.now = func() time.Time { return current }
	ctx := context.Background()

	if err := store.Set(ctx, "draft", "{}", time.Minute); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}

	current = current.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "draft"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired key to be gone, got %v", err)
	}

	set, err := store.SetNX(ctx, "draft", "again", time.Minute)
	if err != nil || !set {
		t.Fatalf("SetNX should treat expired key as absent: %v %v", set, err)
	}
}
