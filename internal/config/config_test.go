package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid, got %v", err)
	}
	if cfg.Analyzer.BaseURL != cfg.Backend.BaseURL {
		t.Errorf("analyzer should default to backend host, got %q", cfg.Analyzer.BaseURL)
	}
	if cfg.Backend.Timeout() != 10*time.Second {
		t.Errorf("backend timeout = %v, expected 10s", cfg.Backend.Timeout())
	}
	if !cfg.Submission.AutoAnalyze {
		t.Error("auto analyze should be on by default")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, expected 8080", cfg.Server.Port)
	}
	if GlobalConfig != cfg {
		t.Error("GlobalConfig should point at the loaded config")
	}
}

func TestLoad_FileKeepsUnsetDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "backend:\n  base_url: http://api.internal:10000/\nanalyzer:\n  base_url: http://ml.internal:10001\n  path: api/analyze\n  text_field: complaint\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.BaseURL != "http://api.internal:10000" {
		t.Errorf("trailing slash should be trimmed, got %q", cfg.Backend.BaseURL)
	}
	if cfg.Analyzer.Path != "/api/analyze" {
		t.Errorf("Path = %q, expected /api/analyze", cfg.Analyzer.Path)
	}
	if cfg.Analyzer.TextField != "complaint" {
		t.Errorf("TextField = %q, expected complaint", cfg.Analyzer.TextField)
	}
	if cfg.Backend.TimeoutSeconds != 10 {
		t.Errorf("unset timeout should keep default, got %d", cfg.Backend.TimeoutSeconds)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("BACKEND_URL", "https://complaints.example.com")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("SUBMISSION_HEALTH_CHECK", "true")
	t.Setenv("DEFAULT_DOMAIN", "Healthcare")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.BaseURL != "https://complaints.example.com" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Errorf("expected 2 origins, got %v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Submission.HealthCheck {
		t.Error("health check should be enabled from env")
	}
	if cfg.Domain.Default != "healthcare" {
		t.Errorf("Domain.Default = %q, expected healthcare", cfg.Domain.Default)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envPath, []byte("ANALYZER_TEXT_FIELD=complaint\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENV_FILE", envPath)
	t.Cleanup(func() { os.Unsetenv("ANALYZER_TEXT_FIELD") })

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Analyzer.TextField != "complaint" {
		t.Errorf("TextField = %q, expected value from .env", cfg.Analyzer.TextField)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad scheme", func(c *Config) { c.Backend.BaseURL = "ftp://host" }},
		{"no host", func(c *Config) { c.Analyzer.BaseURL = "http://" }},
		{"unknown field", func(c *Config) { c.Analyzer.TextField = "body" }},
		{"zero timeout", func(c *Config) { c.Backend.TimeoutSeconds = 0 }},
		{"bad update method", func(c *Config) { c.Backend.UpdateMethod = "POST" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.normalize()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestParseRedisURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.parseRedisURL("redis://:secret@cache.local:6380/2")

	if cfg.Redis.Addr != "cache.local:6380" {
		t.Errorf("Addr = %q", cfg.Redis.Addr)
	}
	if cfg.Redis.Password != "secret" {
		t.Errorf("Password = %q", cfg.Redis.Password)
	}
	if cfg.Redis.DB != 2 {
		t.Errorf("DB = %d", cfg.Redis.DB)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Server.Port = "9999"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Server.Port != "9999" {
		t.Errorf("Port = %q, expected 9999", loaded.Server.Port)
	}
}
