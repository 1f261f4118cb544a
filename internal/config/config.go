// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port         int    `yaml:"port"`
	JWTSecret    string `yaml:"jwt_secret"`
	SecureCookie bool   `yaml:"secure_cookie"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type StorageConfig struct {
	// PostgresURL switches persistence to Postgres when set;
	// otherwise the local SQLite file is used.
	PostgresURL string `yaml:"postgres_url"`
	SQLitePath  string `yaml:"sqlite_path"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	APIKey          string  `yaml:"api_key"`
	BaseURL         string  `yaml:"base_url"`
	Model           string  `yaml:"model"`
	GeminiKey       string  `yaml:"gemini_key"`
	GeminiModel     string  `yaml:"gemini_model"`
	ConcurrentLimit int     `yaml:"concurrent_limit"` // max concurrent completion calls
}

type ChatConfig struct {
	// FreeLimit is the free-tier message quota. A product parameter,
	// not a compiled-in constant.
	FreeLimit       int    `yaml:"free_limit"`
	DefaultLanguage string `yaml:"default_language"` // ru|en
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
	AI      AIConfig      `yaml:"ai"`
	Chat    ChatConfig    `yaml:"chat"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.SessionTTL <= 0 {
		cfg.Server.SessionTTL = 12 * time.Hour
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "assistant.db"
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-4o-mini"
	}
	if cfg.AI.GeminiModel == "" {
		cfg.AI.GeminiModel = "gemini-2.0-flash"
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		// One in-flight completion per process keeps turn ordering
		// trivial; raise only if the view layer ever fans out.
		cfg.AI.ConcurrentLimit = 1
	}
	if cfg.Chat.FreeLimit <= 0 {
		cfg.Chat.FreeLimit = 5
	}
	if cfg.Chat.DefaultLanguage == "" {
		cfg.Chat.DefaultLanguage = "ru"
	}
}

func (cfg *Config) validate() error {
	if cfg.AI.APIKey == "" && cfg.AI.GeminiKey == "" && !cfg.Runtime.Dev {
		return errors.New("no completion provider configured: set ai.api_key or ai.gemini_key")
	}
	if cfg.Server.JWTSecret == "" && !cfg.Runtime.Dev {
		return errors.New("server.jwt_secret is required")
	}
	return nil
}
