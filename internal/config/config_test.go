//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		path := writeConfig(t, `
ai:
  api_key: sk-test
server:
  jwt_secret: secret
`)
		cfg, err := LoadConfig(path, false)
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.Server.Port != 8080 {
			t.Errorf("port = %d, want 8080", cfg.Server.Port)
		}
		if cfg.Server.SessionTTL != 12*time.Hour {
			t.Errorf("session ttl = %v", cfg.Server.SessionTTL)
		}
		if cfg.Storage.SQLitePath != "assistant.db" {
			t.Errorf("sqlite path = %q", cfg.Storage.SQLitePath)
		}
		if cfg.AI.Model != "gpt-4o-mini" || cfg.AI.ConcurrentLimit != 1 {
			t.Errorf("ai defaults = %+v", cfg.AI)
		}
		if cfg.Chat.FreeLimit != 5 || cfg.Chat.DefaultLanguage != "ru" {
			t.Errorf("chat defaults = %+v", cfg.Chat)
		}
	})

	t.Run("explicit values win", func(t *testing.T) {
		path := writeConfig(t, `
server:
  port: 9999
  jwt_secret: secret
  session_ttl: 1h
ai:
  api_key: sk-test
  model: gpt-4o
chat:
  free_limit: 10
  default_language: en
`)
		cfg, err := LoadConfig(path, false)
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.Server.Port != 9999 || cfg.Server.SessionTTL != time.Hour {
			t.Errorf("server = %+v", cfg.Server)
		}
		if cfg.AI.Model != "gpt-4o" {
			t.Errorf("model = %q", cfg.AI.Model)
		}
		if cfg.Chat.FreeLimit != 10 || cfg.Chat.DefaultLanguage != "en" {
			t.Errorf("chat = %+v", cfg.Chat)
		}
	})

	t.Run("rejects missing provider outside dev", func(t *testing.T) {
		path := writeConfig(t, "server:\n  jwt_secret: secret\n")
		if _, err := LoadConfig(path, false); err == nil {
			t.Error("expected error without a completion provider")
		}
		if _, err := LoadConfig(path, true); err != nil {
			t.Errorf("dev mode must allow a bare config: %v", err)
		}
	})

	t.Run("rejects missing jwt secret outside dev", func(t *testing.T) {
		path := writeConfig(t, "ai:\n  api_key: sk-test\n")
		if _, err := LoadConfig(path, false); err == nil {
			t.Error("expected error without jwt secret")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), false); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
