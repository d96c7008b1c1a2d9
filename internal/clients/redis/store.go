package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/edh-dashboard-backend/internal/platform/kv"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

// Store is a kv.Store backed by Redis. Keys are namespaced with a prefix so the session
// keyspace can share an instance with other tenants.
type Store struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
}

type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix defaults to "edh:".
	Prefix string
}

// NewStore connects and pings once.
func NewStore(ctx context.Context, log *logger.Logger, opts Options) (*Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(opts.Addr) == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if opts.Prefix == "" {
		opts.Prefix = "edh:"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewStoreWithClient(log, rdb, opts.Prefix), nil
}

func NewStoreWithClient(log *logger.Logger, rdb goredis.UniversalClient, prefix string) *Store {
	return &Store{
		log:    log.With("service", "RedisStore"),
		rdb:    rdb,
		prefix: strings.TrimSpace(prefix),
	}
}

// Client exposes the connection for health sampling.
func (s *Store) Client() goredis.UniversalClient { return s.rdb }

func (s *Store) key(k string) string { return s.prefix + k }

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		s.log.Warn("redis get failed", "key", key, "error", err)
		return nil, err
	}
	return raw, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.rdb.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		s.log.Warn("redis set failed", "key", key, "error", err)
		return err
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.key(key)).Err()
}

func (s *Store) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

var _ kv.Store = (*Store)(nil)
