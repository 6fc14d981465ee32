package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"visitor-registration/internal/config"
)

func newTestProvider(t *testing.T) *SQLiteProvider {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "visitors.db") + "?_busy_timeout=5000"
	cfg := &config.Storage{
		SQLite: &config.SQLiteStorage{Path: dsn},
	}

	provider := NewSQLiteProvider(cfg)
	if provider == nil {
		t.Fatal("failed to open sqlite provider")
	}
	if err := provider.runMigrations("sqlite3"); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}

	t.Cleanup(func() {
		provider.Close()
	})
	return provider
}

func testVisitor(name string, checkedIn time.Time) Visitor {
	return Visitor{
		Name:        name,
		Email:       "test@example.nl",
		Phone:       "0612345678",
		Company:     "Acme BV",
		Host:        "Pieters",
		Reason:      "Meeting",
		CheckedInAt: checkedIn,
	}
}

func TestCreateAndListPresent(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	base := time.Now().Truncate(time.Second)
	firstID, err := provider.CreateVisitor(ctx, testVisitor("Jan Jansen", base.Add(-2*time.Minute)))
	if err != nil {
		t.Fatalf("create visitor: %v", err)
	}
	secondID, err := provider.CreateVisitor(ctx, testVisitor("Piet de Vries", base))
	if err != nil {
		t.Fatalf("create visitor: %v", err)
	}

	present, err := provider.ListPresent(ctx)
	if err != nil {
		t.Fatalf("list present: %v", err)
	}
	if len(present) != 2 {
		t.Fatalf("expected 2 present visitors, got %d", len(present))
	}

	// Most recent check-in first
	if present[0].ID != secondID || present[1].ID != firstID {
		t.Errorf("unexpected order: got ids %d, %d", present[0].ID, present[1].ID)
	}
	if present[0].Status != StatusPresent {
		t.Errorf("expected status %q, got %q", StatusPresent, present[0].Status)
	}
	if present[0].CheckedOutAt != nil {
		t.Errorf("expected nil checkout time, got %v", present[0].CheckedOutAt)
	}
}

func TestSetDepartedConditional(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	id, err := provider.CreateVisitor(ctx, testVisitor("Jan Jansen", time.Now()))
	if err != nil {
		t.Fatalf("create visitor: %v", err)
	}

	count, err := provider.SetDeparted(ctx, id, time.Now())
	if err != nil {
		t.Fatalf("set departed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row updated, got %d", count)
	}

	// Second checkout of the same visitor is a no-op, not an error
	count, err = provider.SetDeparted(ctx, id, time.Now())
	if err != nil {
		t.Fatalf("second set departed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 rows on repeat checkout, got %d", count)
	}

	// Unknown id behaves the same way
	count, err = provider.SetDeparted(ctx, id+1000, time.Now())
	if err != nil {
		t.Fatalf("set departed unknown id: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 rows for unknown id, got %d", count)
	}

	all, err := provider.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if all[0].Status != StatusDeparted {
		t.Errorf("expected status %q, got %q", StatusDeparted, all[0].Status)
	}
	if all[0].CheckedOutAt == nil {
		t.Error("expected checkout timestamp to be set")
	}
}

func TestConcurrentCheckoutSingleWinner(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	id, err := provider.CreateVisitor(ctx, testVisitor("Jan Jansen", time.Now()))
	if err != nil {
		t.Fatalf("create visitor: %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan int64, workers)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count, err := provider.SetDeparted(ctx, id, time.Now())
			if err != nil {
				t.Errorf("set departed: %v", err)
				return
			}
			results <- count
		}()
	}
	wg.Wait()
	close(results)

	var winners int64
	for count := range results {
		winners += count
	}
	if winners != 1 {
		t.Errorf("expected exactly one successful checkout, got %d", winners)
	}
}

func TestDeleteDepartedOnly(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	var ids []int64
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		id, err := provider.CreateVisitor(ctx, testVisitor(name, time.Now()))
		if err != nil {
			t.Fatalf("create visitor: %v", err)
		}
		ids = append(ids, id)
	}

	for _, id := range ids[:2] {
		if _, err := provider.SetDeparted(ctx, id, time.Now()); err != nil {
			t.Fatalf("set departed: %v", err)
		}
	}

	deleted, err := provider.DeleteDeparted(ctx)
	if err != nil {
		t.Fatalf("delete departed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 rows deleted, got %d", deleted)
	}

	remaining, err := provider.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(remaining) != 3 {
		t.Fatalf("expected 3 remaining visitors, got %d", len(remaining))
	}
	for _, v := range remaining {
		if v.Status != StatusPresent {
			t.Errorf("present visitor %d was touched by purge", v.ID)
		}
	}
}

func TestNonceLifecycle(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	if err := provider.CreateNonce(ctx, "abc123", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("create nonce: %v", err)
	}

	exists, err := provider.ExistsNonce(ctx, "abc123")
	if err != nil {
		t.Fatalf("exists nonce: %v", err)
	}
	if !exists {
		t.Error("expected nonce to exist")
	}

	consumed, err := provider.ConsumeNonce(ctx, "abc123")
	if err != nil {
		t.Fatalf("consume nonce: %v", err)
	}
	if !consumed {
		t.Error("expected first consume to succeed")
	}

	// Replay
	consumed, err = provider.ConsumeNonce(ctx, "abc123")
	if err != nil {
		t.Fatalf("consume nonce again: %v", err)
	}
	if consumed {
		t.Error("expected replayed consume to fail")
	}
}

func TestExpireNonces(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	if err := provider.CreateNonce(ctx, "stale", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("create nonce: %v", err)
	}
	if err := provider.CreateNonce(ctx, "fresh", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("create nonce: %v", err)
	}

	if err := provider.ExpireNonces(ctx, time.Now()); err != nil {
		t.Fatalf("expire nonces: %v", err)
	}

	exists, err := provider.ExistsNonce(ctx, "stale")
	if err != nil {
		t.Fatalf("exists nonce: %v", err)
	}
	if exists {
		t.Error("expected stale nonce to be gone")
	}

	exists, err = provider.ExistsNonce(ctx, "fresh")
	if err != nil {
		t.Fatalf("exists nonce: %v", err)
	}
	if !exists {
		t.Error("expected fresh nonce to survive")
	}
}

func TestSchemaVersion(t *testing.T) {
	provider := newTestProvider(t)

	version, err := provider.GetSchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("get schema version: %v", err)
	}
	if version < 2 {
		t.Errorf("expected schema version >= 2, got %d", version)
	}
}
