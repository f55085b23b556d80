// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port   int    `yaml:"port"`    // 0 disables the admin HTTP server
	APIKey string `yaml:"api_key"` // bearer token for /api routes; empty leaves them open
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AIConfig struct {
	Provider        string        `yaml:"provider"` // gemini|genai|openai|noop
	APIKey          string        `yaml:"api_key"`
	BaseURL         string        `yaml:"base_url"`
	Model           string        `yaml:"model"`
	Timeout         time.Duration `yaml:"timeout"`
	ConcurrentLimit int           `yaml:"concurrent_limit"` // max concurrent AI calls
}

type StoreConfig struct {
	Backend       string `yaml:"backend"` // file|memory|redis|postgres|sqlite
	Path          string `yaml:"path"`    // directory (file) or database file (sqlite)
	EncryptionKey string `yaml:"encryption_key"`
}

type ChatConfig struct {
	// BackgroundSaves persists sessions on a worker instead of inline.
	BackgroundSaves bool `yaml:"background_saves"`
}

type Config struct {
	Log          LogConfig      `yaml:"log"`
	AI           AIConfig       `yaml:"ai"`
	Store        StoreConfig    `yaml:"store"`
	Redis        RedisConfig    `yaml:"redis"`
	Database     DatabaseConfig `yaml:"database"`
	Admin        AdminConfig    `yaml:"admin"`
	Chat         ChatConfig     `yaml:"chat"`
	PersonasFile string         `yaml:"personas_file"`

	Runtime RuntimeConfig `yaml:"-"`
}

const (
	ProviderGemini = "gemini"
	ProviderGenAI  = "genai"
	ProviderOpenAI = "openai"
	ProviderNoop   = "noop"

	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// LoadConfig reads the YAML file at path. A missing file is allowed in dev
// mode, where defaults plus environment fallbacks are used.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && dev:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg.Runtime.Dev = dev
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	cfg.AI.Provider = strings.ToLower(strings.TrimSpace(cfg.AI.Provider))
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = ProviderGemini
		if cfg.Runtime.Dev && cfg.AI.APIKey == "" && os.Getenv("GEMINI_API_KEY") == "" {
			cfg.AI.Provider = ProviderNoop
		}
	}
	if cfg.AI.APIKey == "" {
		if cfg.AI.Provider == ProviderOpenAI {
			cfg.AI.APIKey = os.Getenv("OPENAI_API_KEY")
		} else {
			cfg.AI.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
	if cfg.AI.Model == "" {
		switch cfg.AI.Provider {
		case ProviderOpenAI:
			cfg.AI.Model = "gpt-4o-mini"
		default:
			cfg.AI.Model = "gemini-2.0-flash"
		}
	}
	if cfg.AI.BaseURL == "" && (cfg.AI.Provider == ProviderGemini || cfg.AI.Provider == ProviderGenAI) {
		cfg.AI.BaseURL = "https://generativelanguage.googleapis.com"
	}
	cfg.AI.Timeout = normalizeTimeout(cfg.AI.Timeout)
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 4
	}

	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendFile
	}
	if cfg.Store.Path == "" {
		switch cfg.Store.Backend {
		case BackendSQLite:
			cfg.Store.Path = "data/chat_history.db"
		default:
			cfg.Store.Path = "data"
		}
	}
	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case ProviderGemini, ProviderGenAI, ProviderOpenAI:
		if c.AI.APIKey == "" {
			return errors.New("ai.api_key is required (or set GEMINI_API_KEY or OPENAI_API_KEY)")
		}
	case ProviderNoop:
	default:
		return fmt.Errorf("ai.provider %q is not supported", c.AI.Provider)
	}

	switch c.Store.Backend {
	case BackendFile, BackendMemory, BackendSQLite:
	case BackendRedis:
		if c.Redis.URL == "" {
			return errors.New("redis.url is required for the redis store")
		}
	case BackendPostgres:
		if c.Database.URL == "" {
			return errors.New("database.url is required for the postgres store")
		}
	default:
		return fmt.Errorf("store.backend %q is not supported", c.Store.Backend)
	}

	switch len(c.Store.EncryptionKey) {
	case 0, 16, 24, 32:
	default:
		return fmt.Errorf("store.encryption_key must be 16, 24 or 32 bytes; got %d", len(c.Store.EncryptionKey))
	}
	return nil
}

func normalizeTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}
