package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"

	"github.com/yungbote/edh-dashboard-backend/internal/platform/kv"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

// Session data keys.
const (
	SessionKeyGoogleTokens  = "googleTokens"
	SessionKeyUserProfile   = "userProfile"
	SessionKeyDatabaseSheet = "databaseSheetId"
	SessionKeyTestUser      = "testUser"
)

const (
	sessionKeyPrefix = "session:"
	SessionTTL       = 30 * 24 * time.Hour
)

// SessionService stores a small JSON document per opaque session id.
type SessionService interface {
	// Get decodes the value stored under key into out. It reports false when the key is
	// absent or null.
	Get(ctx context.Context, sessionID, key string, out any) (bool, error)
	Has(ctx context.Context, sessionID, key string) (bool, error)
	Set(ctx context.Context, sessionID, key string, value any) error
	Delete(ctx context.Context, sessionID string, keys ...string) error
	Clear(ctx context.Context, sessionID string) error
}

type sessionService struct {
	log   *logger.Logger
	store kv.Store
	ttl   time.Duration

	// mu serializes read-modify-write cycles issued by this process.
	mu sync.Mutex
}

func NewSessionService(log *logger.Logger, store kv.Store) SessionService {
	return &sessionService{
		log:   log.With("service", "SessionService"),
		store: store,
		ttl:   SessionTTL,
	}
}

func (s *sessionService) load(ctx context.Context, sessionID string) (map[string]any, error) {
	raw, err := s.store.Get(ctx, sessionKeyPrefix+sessionID)
	if errors.Is(err, kv.ErrNotFound) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	data := map[string]any{}
	if err := json.Unmarshal(raw, &data); err != nil {
		s.log.Warn("Discarding unreadable session", "session_id", sessionID, "error", err)
		return map[string]any{}, nil
	}
	return data, nil
}

func (s *sessionService) save(ctx context.Context, sessionID string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.store.Set(ctx, sessionKeyPrefix+sessionID, raw, s.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *sessionService) Get(ctx context.Context, sessionID, key string, out any) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	data, err := s.load(ctx, sessionID)
	if err != nil {
		return false, err
	}
	v, ok := data[key]
	if !ok || v == nil {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := decodeSessionValue(v, out); err != nil {
		return false, fmt.Errorf("decode session %s: %w", key, err)
	}
	return true, nil
}

func (s *sessionService) Has(ctx context.Context, sessionID, key string) (bool, error) {
	return s.Get(ctx, sessionID, key, nil)
}

// Set stores value under key. A nil value removes the key.
func (s *sessionService) Set(ctx context.Context, sessionID, key string, value any) error {
	if sessionID == "" {
		return fmt.Errorf("missing session id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if value == nil {
		delete(data, key)
	} else {
		data[key] = value
	}
	return s.save(ctx, sessionID, data)
}

func (s *sessionService) Delete(ctx context.Context, sessionID string, keys ...string) error {
	if sessionID == "" || len(keys) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(data, k)
	}
	return s.save(ctx, sessionID, data)
}

func (s *sessionService) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.store.Delete(ctx, sessionKeyPrefix+sessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// decodeSessionValue maps a value produced by json.Unmarshal into out, honouring json tags.
// Values written and read back in the same process may still be typed structs, so those are
// round-tripped through JSON first.
func decodeSessionValue(v any, out any) error {
	switch v.(type) {
	case map[string]any, []any, string, float64, bool:
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, out)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
	})
	if err != nil {
		return fmt.Errorf("new decoder: %w", err)
	}
	return dec.Decode(v)
}
