package cache

import (
	"context"
	"testing"
	"time"

	"aidpal-server-go/internal/domain/analysis"
)

func sampleResult() *analysis.Result {
	return &analysis.Result{
		WoundType:      "Cut (Laceration)",
		Severity:       analysis.SeverityMedium,
		Description:    "A straight cut with clean edges.",
		FirstAidSteps:  []string{"Apply pressure", "Clean the wound"},
		Recommendation: "See a doctor if bleeding persists",
	}
}

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(Config{TTL: time.Minute})
	t.Cleanup(func() {
		_ = store.Close(ctx)
	})

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get on empty store: ok=%v err=%v", ok, err)
	}

	want := sampleResult()
	if err := store.Set(ctx, "key-1", want); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	got, ok, err := store.Get(ctx, "key-1")
	if err != nil || !ok {
		t.Fatalf("Get after Set: ok=%v err=%v", ok, err)
	}
	if got.WoundType != want.WoundType || got.Severity != want.Severity {
		t.Errorf("round-trip mismatch: %+v", got)
	}

	// Stored entries are copies, not aliases.
	got.WoundType = "mutated"
	again, _, _ := store.Get(ctx, "key-1")
	if again.WoundType != want.WoundType {
		t.Error("cached entry must not share memory with callers")
	}

	if err := store.Delete(ctx, "key-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "key-1"); ok {
		t.Error("entry still present after Delete")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(Config{
		TTL:    10 * time.Millisecond,
		Memory: &MemoryConfig{GCInterval: 5 * time.Millisecond},
	})
	t.Cleanup(func() {
		_ = store.Close(ctx)
	})

	if err := store.Set(ctx, "short", sampleResult()); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	if _, ok, _ := store.Get(ctx, "short"); ok {
		t.Error("expired entry still readable")
	}
}

func TestMemoryStoreStats(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(Config{TTL: time.Minute})
	t.Cleanup(func() {
		_ = store.Close(ctx)
	})

	_ = store.Set(ctx, "a", sampleResult())
	_ = store.Set(ctx, "b", sampleResult())

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if stats["type"] != "memory" || stats["active"] != 2 {
		t.Errorf("unexpected stats: %v", stats)
	}
}

func TestFactoryDrivers(t *testing.T) {
	store, err := New(Config{Driver: DriverMemory})
	if err != nil {
		t.Fatalf("memory driver: %v", err)
	}
	_ = store.Close(context.Background())

	if store, err := New(Config{}); err != nil {
		t.Errorf("empty driver should default to memory: %v", err)
	} else {
		_ = store.Close(context.Background())
	}

	if _, err := New(Config{Driver: "etcd"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
