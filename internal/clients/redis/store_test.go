package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/edh-dashboard-backend/internal/platform/kv"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStoreWithClient(logger.Nop(), rdb, "test:"), mr
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	if _, err := s.Get(ctx, "session:x"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, "session:x", []byte(`{"a":1}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("test:session:x") {
		t.Fatalf("key should be stored with prefix")
	}
	if ttl := mr.TTL("test:session:x"); ttl != time.Hour {
		t.Fatalf("unexpected ttl %v", ttl)
	}
	got, err := s.Get(ctx, "session:x")
	if err != nil || string(got) != `{"a":1}` {
		t.Fatalf("Get: %q %v", got, err)
	}

	mr.FastForward(2 * time.Hour)
	if _, err := s.Get(ctx, "session:x"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expired key should be gone, got %v", err)
	}

	_ = s.Set(ctx, "k", []byte("v"), 0)
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if mr.Exists("test:k") {
		t.Fatalf("key should be deleted")
	}
}

func TestNewStoreConnects(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	s, err := NewStore(ctx, logger.Nop(), Options{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Set(ctx, "a", []byte("1"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("edh:a") {
		t.Fatalf("default prefix should be edh:")
	}
	if s.Client() == nil {
		t.Fatalf("Client should expose the connection")
	}

	if _, err := NewStore(ctx, logger.Nop(), Options{}); err == nil {
		t.Fatalf("empty address should fail")
	}
}
