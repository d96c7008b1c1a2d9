package kv

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := m.Set(ctx, "a", []byte("1"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := m.Set(ctx, "forever", []byte("2"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := m.Get(ctx, "a")
	if err != nil || string(got) != "1" {
		t.Fatalf("Get: %q %v", got, err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := m.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired key should be gone, got %v", err)
	}
	if _, err := m.Get(ctx, "forever"); err != nil {
		t.Fatalf("key without ttl should not expire: %v", err)
	}

	if err := m.Delete(ctx, "forever"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := m.Get(ctx, "forever"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted key should be gone")
	}
}

func TestMemorySweepsExpiredEntriesOnSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	if err := m.Set(ctx, "abandoned", []byte("x"), 30*time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	now = now.Add(40 * time.Second)
	if err := m.Set(ctx, "kept", []byte("y"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok := m.entries["abandoned"]; !ok {
		t.Fatalf("sweep should not run more than once per %v", sweepEvery)
	}

	now = now.Add(sweepEvery)
	if err := m.Set(ctx, "fresh", []byte("z"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok := m.entries["abandoned"]; ok {
		t.Fatalf("expired entry should be swept without being read")
	}
	if len(m.entries) != 2 {
		t.Fatalf("expected kept and fresh to remain, have %d entries", len(m.entries))
	}
}
