package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeConfig(t *testing.T, path, payload string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReloadNotifiesOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeConfig(t, path, `{"endpoint": "http://a:1"}`)

	h, err := NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder() error: %v", err)
	}

	var gotPrev, gotNext Config
	calls := 0
	h.OnChange(func(prev, next Config) {
		calls++
		gotPrev, gotNext = prev, next
	})

	writeConfig(t, path, `{"endpoint": "http://b:2"}`)
	if err := h.Reload(); err != nil {
		t.Fatalf("Reload() error: %v", err)
	}

	if calls != 1 {
		t.Fatalf("callbacks = %d, want 1", calls)
	}
	if gotPrev.Endpoint != "http://a:1" || gotNext.Endpoint != "http://b:2" {
		t.Errorf("change = %q -> %q", gotPrev.Endpoint, gotNext.Endpoint)
	}
	if h.Get().Endpoint != "http://b:2" {
		t.Errorf("Get() = %q", h.Get().Endpoint)
	}
}

func TestReloadSkipsCallbacksWhenUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeConfig(t, path, `{"endpoint": "http://a:1"}`)

	h, err := NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder() error: %v", err)
	}
	calls := 0
	h.OnChange(func(Config, Config) { calls++ })

	if err := h.Reload(); err != nil {
		t.Fatalf("Reload() error: %v", err)
	}
	if calls != 0 {
		t.Errorf("callbacks = %d, want 0 for identical config", calls)
	}
}

func TestReloadKeepsOldConfigOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeConfig(t, path, `{"endpoint": "http://a:1"}`)

	h, err := NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder() error: %v", err)
	}

	writeConfig(t, path, `{broken`)
	if err := h.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	if h.Get().Endpoint != "http://a:1" {
		t.Errorf("config replaced despite failure: %q", h.Get().Endpoint)
	}
}

func TestChangePredicates(t *testing.T) {
	base := Config{Endpoint: "http://a:1", ManagementKey: "k", APIKeys: []any{"x"}}

	moved := base
	moved.Endpoint = "http://b:2"
	if !EndpointChanged(base, moved) {
		t.Error("endpoint change not detected")
	}

	rekeyed := base
	rekeyed.ManagementKey = "other"
	if !EndpointChanged(base, rekeyed) {
		t.Error("management key change not detected")
	}

	keysChanged := base
	keysChanged.APIKeys = []any{"x", "y"}
	if !KeyListChanged(base, keysChanged) {
		t.Error("key list change not detected")
	}

	if EndpointChanged(base, base) || KeyListChanged(base, base) {
		t.Error("no-op flagged as change")
	}
}
