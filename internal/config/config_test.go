package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("DATABASE_URL", "")
	path := writeConfig(t, "ai:\n  api_key: k-123\n")

	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
	if cfg.AI.Provider != ProviderGemini {
		t.Errorf("expected gemini provider, got %q", cfg.AI.Provider)
	}
	if cfg.AI.Model != "gemini-2.0-flash" {
		t.Errorf("unexpected model %q", cfg.AI.Model)
	}
	if cfg.AI.BaseURL != "https://generativelanguage.googleapis.com" {
		t.Errorf("unexpected base url %q", cfg.AI.BaseURL)
	}
	if cfg.AI.Timeout != 30*time.Second {
		t.Errorf("unexpected timeout %v", cfg.AI.Timeout)
	}
	if cfg.Store.Backend != BackendFile || cfg.Store.Path != "data" {
		t.Errorf("unexpected store defaults: %+v", cfg.Store)
	}
	if cfg.Runtime.Dev {
		t.Error("dev must be false")
	}
}

func TestLoadConfig_EnvFallbacks(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	path := writeConfig(t, "store:\n  backend: Postgres\n")

	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AI.APIKey != "from-env" {
		t.Errorf("expected api key from env, got %q", cfg.AI.APIKey)
	}
	if cfg.Store.Backend != BackendPostgres {
		t.Errorf("backend should be normalised, got %q", cfg.Store.Backend)
	}
	if cfg.Database.URL == "" {
		t.Error("expected database url from env")
	}
}

func TestLoadConfig_DevWithoutFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), true)
	if err != nil {
		t.Fatalf("dev mode should tolerate a missing file: %v", err)
	}
	if cfg.AI.Provider != ProviderNoop {
		t.Errorf("dev without key should use noop provider, got %q", cfg.AI.Provider)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), false); err == nil {
		t.Fatal("missing file outside dev mode must fail")
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("DATABASE_URL", "")

	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing key", "ai:\n  provider: gemini\n", "api_key"},
		{"bad provider", "ai:\n  provider: claude\n  api_key: x\n", "not supported"},
		{"redis without url", "ai:\n  api_key: x\nstore:\n  backend: redis\n", "redis.url"},
		{"postgres without url", "ai:\n  api_key: x\nstore:\n  backend: postgres\n", "database.url"},
		{"bad backend", "ai:\n  api_key: x\nstore:\n  backend: s3\n", "not supported"},
		{"bad key length", "ai:\n  api_key: x\nstore:\n  encryption_key: short\n", "encryption_key"},
		{"bad yaml", "ai: [", "parse config"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.body), false)
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadConfig_OpenAIModelDefault(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	cfg, err := LoadConfig(writeConfig(t, "ai:\n  provider: openai\n  api_key: sk\n  base_url: http://gw\n"), false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AI.Model != "gpt-4o-mini" {
		t.Errorf("unexpected openai model %q", cfg.AI.Model)
	}
	if cfg.AI.BaseURL != "http://gw" {
		t.Errorf("base url must be kept, got %q", cfg.AI.BaseURL)
	}
}

func TestLoadConfig_OpenAIKeyFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")
	cfg, err := LoadConfig(writeConfig(t, "ai:\n  provider: openai\n"), false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AI.APIKey != "openai-key" {
		t.Errorf("openai provider should read OPENAI_API_KEY, got %q", cfg.AI.APIKey)
	}
}
