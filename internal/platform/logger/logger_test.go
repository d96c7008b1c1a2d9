package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVs(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"access_token", "ya29.secret",
		"session_id", "abc123",
		"deck", "Deck Alpha",
		"dangling",
	})
	if len(out) != 7 {
		t.Fatalf("expected 7 entries, got %d: %#v", len(out), out)
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("token should be redacted, got %v", out[1])
	}
	if s, _ := out[3].(string); !strings.HasPrefix(s, "hash:") || strings.Contains(s, "abc123") {
		t.Fatalf("session id should be hashed, got %v", out[3])
	}
	if out[5] != "Deck Alpha" {
		t.Fatalf("plain values pass through, got %v", out[5])
	}
	if out[6] != "dangling" {
		t.Fatalf("odd trailing key should be kept")
	}
}

func TestSanitizeNestedAndJWT(t *testing.T) {
	jwt := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig"
	out := sanitizeKVs([]interface{}{
		"payload", map[string]interface{}{"refresh_token": "x", "name": "ok"},
		"state", jwt,
	})
	m := out[1].(map[string]interface{})
	if m["refresh_token"] != "[REDACTED]" || m["name"] != "ok" {
		t.Fatalf("unexpected nested sanitize: %#v", m)
	}
	if out[3] != "[REDACTED]" {
		t.Fatalf("jwt-looking value should be redacted")
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("").String() != "debug" {
		t.Fatalf("empty level should default to debug")
	}
	if parseLevel("warn").String() != "warn" {
		t.Fatalf("warn level not parsed")
	}
	if parseLevel("bogus").String() != "debug" {
		t.Fatalf("unknown level should default to debug")
	}
}

func TestNewTestMode(t *testing.T) {
	l, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.With("component", "x").Info("hello", "k", "v")
	Nop().Error("discarded")
}
