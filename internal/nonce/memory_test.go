package nonce

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStorePutConsume(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, "n1", time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !store.Exists(ctx, "n1") {
		t.Error("expected nonce to exist after put")
	}

	ok, err := store.Consume(ctx, "n1")
	if err != nil || !ok {
		t.Fatalf("consume failed: ok=%v err=%v", ok, err)
	}

	// Consumed means gone
	ok, err = store.Consume(ctx, "n1")
	if ok {
		t.Error("expected second consume to fail")
	}
	var missing *NonceMissingError
	if !errors.As(err, &missing) {
		t.Errorf("expected NonceMissingError, got %v", err)
	}
}

func TestMemoryStoreRejectsBadTTL(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Put(context.Background(), "n", 0); err == nil {
		t.Error("expected zero ttl to be rejected")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, "stale", time.Millisecond); err != nil {
		t.Fatalf("put: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if store.Exists(ctx, "stale") {
		t.Error("expected expired nonce to report absent")
	}

	ok, err := store.Consume(ctx, "stale")
	if ok {
		t.Error("expected consume of expired nonce to fail")
	}
	var expired *NonceExpiredError
	if !errors.As(err, &expired) {
		t.Errorf("expected NonceExpiredError, got %v", err)
	}
}

func TestMemoryStoreExpireNonces(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Put(ctx, "stale", time.Millisecond)
	store.Put(ctx, "fresh", time.Minute)
	time.Sleep(5 * time.Millisecond)

	if err := store.ExpireNonces(ctx); err != nil {
		t.Fatalf("expire: %v", err)
	}

	store.mu.RLock()
	_, staleKept := store.entries["stale"]
	_, freshKept := store.entries["fresh"]
	store.mu.RUnlock()

	if staleKept {
		t.Error("expected stale nonce to be pruned")
	}
	if !freshKept {
		t.Error("expected fresh nonce to survive")
	}
}
