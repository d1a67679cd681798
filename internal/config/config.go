package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Backend    BackendConfig    `yaml:"backend"`
	Analyzer   AnalyzerConfig   `yaml:"analyzer"`
	Submission SubmissionConfig `yaml:"submission"`
	Cache      CacheConfig      `yaml:"cache"`
	Redis      RedisConfig      `yaml:"redis"`
	CORS       CORSConfig       `yaml:"cors"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Activity   ActivityConfig   `yaml:"activity"`
	Domain     DomainConfig     `yaml:"domain"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

// BackendConfig points at the complaint persistence API.
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UpdateMethod   string `yaml:"update_method"` // PATCH, PUT
}

// AnalyzerConfig points at the external classification service. The path and
// body field differ between deployments (/analyze vs /api/analyze, text vs complaint).
type AnalyzerConfig struct {
	BaseURL        string `yaml:"base_url"` // empty means same host as backend
	Path           string `yaml:"path"`
	TextField      string `yaml:"text_field"` // text, complaint
	HealthPath     string `yaml:"health_path"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type SubmissionConfig struct {
	AutoAnalyze bool `yaml:"auto_analyze"`
	HealthCheck bool `yaml:"health_check"` // ping the backend before posting
}

type CacheConfig struct {
	ListTTLSeconds   int `yaml:"list_ttl_seconds"`
	AnalysisTTLHours int `yaml:"analysis_ttl_hours"`
}

// RedisConfig for the optional shared complaint-list cache
type RedisConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

type ActivityConfig struct {
	RetentionDays int    `yaml:"retention_days"`
	CleanupSpec   string `yaml:"cleanup_spec"` // cron expression
}

type DomainConfig struct {
	Default string `yaml:"default"`
}

var GlobalConfig *Config

// Load reads the YAML config (if present), applies .env and environment
// overrides, and validates the result.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	if err := loadDotEnv(os.Getenv("ENV_FILE")); err != nil {
		return nil, err
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		fileCfg := DefaultConfig()
		if err := yaml.Unmarshal(data, fileCfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath, err)
		}
		cfg = fileCfg
	}

	cfg.overrideFromEnv()
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	GlobalConfig = cfg
	return cfg, nil
}

// loadDotEnv loads KEY=VALUE pairs without overriding variables already set.
func loadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
			Mode: "debug",
		},
		Log: LogConfig{
			Level: "info",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "complaintdesk.db",
		},
		Backend: BackendConfig{
			BaseURL:        "http://localhost:5001",
			TimeoutSeconds: 10,
			UpdateMethod:   "PATCH",
		},
		Analyzer: AnalyzerConfig{
			Path:           "/analyze",
			TextField:      "text",
			HealthPath:     "/health",
			TimeoutSeconds: 30,
		},
		Submission: SubmissionConfig{
			AutoAnalyze: true,
			HealthCheck: false,
		},
		Cache: CacheConfig{
			ListTTLSeconds:   15,
			AnalysisTTLHours: 24,
		},
		Redis: RedisConfig{
			Enabled:   false,
			Addr:      "localhost:6379",
			DB:        0,
			KeyPrefix: "complaintdesk:",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000", "http://127.0.0.1:5173"},
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     2,
			Burst:   10,
		},
		Activity: ActivityConfig{
			RetentionDays: 30,
			CleanupSpec:   "@daily",
		},
		Domain: DomainConfig{
			Default: "college",
		},
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if backendURL := os.Getenv("BACKEND_URL"); backendURL != "" {
		c.Backend.BaseURL = backendURL
	}
	if analyzerURL := os.Getenv("ANALYZER_URL"); analyzerURL != "" {
		c.Analyzer.BaseURL = analyzerURL
	}
	if path := os.Getenv("ANALYZER_PATH"); path != "" {
		c.Analyzer.Path = path
	}
	if method := os.Getenv("BACKEND_UPDATE_METHOD"); method != "" {
		c.Backend.UpdateMethod = method
	}
	if field := os.Getenv("ANALYZER_TEXT_FIELD"); field != "" {
		c.Analyzer.TextField = field
	}
	if v := os.Getenv("SUBMISSION_HEALTH_CHECK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Submission.HealthCheck = b
		}
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.CORS.AllowedOrigins = splitList(origins)
	}
	if domain := os.Getenv("DEFAULT_DOMAIN"); domain != "" {
		c.Domain.Default = domain
	}
	// Redis URL override (format: redis://:password@host:port/db)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.Enabled = true
		c.parseRedisURL(redisURL)
	}
}

// parseRedisURL parses a Redis URL and sets config values
// Format: redis://:password@host:port/db
func (c *Config) parseRedisURL(redisURL string) {
	rest := strings.TrimPrefix(redisURL, "redis://")

	if atIdx := strings.Index(rest, "@"); atIdx != -1 {
		authPart := rest[:atIdx]
		rest = rest[atIdx+1:]
		if colonIdx := strings.Index(authPart, ":"); colonIdx != -1 {
			c.Redis.Password = authPart[colonIdx+1:]
		}
	}

	if slashIdx := strings.LastIndex(rest, "/"); slashIdx != -1 {
		dbStr := rest[slashIdx+1:]
		rest = rest[:slashIdx]
		if db, err := strconv.Atoi(dbStr); err == nil {
			c.Redis.DB = db
		}
	}

	c.Redis.Addr = rest
}

func (c *Config) normalize() {
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
	c.Analyzer.BaseURL = strings.TrimRight(c.Analyzer.BaseURL, "/")
	if c.Analyzer.BaseURL == "" {
		c.Analyzer.BaseURL = c.Backend.BaseURL
	}
	if c.Analyzer.Path != "" && !strings.HasPrefix(c.Analyzer.Path, "/") {
		c.Analyzer.Path = "/" + c.Analyzer.Path
	}
	if c.Analyzer.HealthPath != "" && !strings.HasPrefix(c.Analyzer.HealthPath, "/") {
		c.Analyzer.HealthPath = "/" + c.Analyzer.HealthPath
	}
	c.Backend.UpdateMethod = strings.ToUpper(strings.TrimSpace(c.Backend.UpdateMethod))
	if c.Backend.UpdateMethod == "" {
		c.Backend.UpdateMethod = "PATCH"
	}
	c.Analyzer.TextField = strings.ToLower(strings.TrimSpace(c.Analyzer.TextField))
	c.Domain.Default = strings.ToLower(strings.TrimSpace(c.Domain.Default))
}

// Validate checks the settings that would otherwise fail on the first request.
func (c *Config) Validate() error {
	if err := validateServiceURL("backend.base_url", c.Backend.BaseURL); err != nil {
		return err
	}
	if err := validateServiceURL("analyzer.base_url", c.Analyzer.BaseURL); err != nil {
		return err
	}
	switch c.Analyzer.TextField {
	case "text", "complaint":
	default:
		return fmt.Errorf("analyzer.text_field must be \"text\" or \"complaint\", got %q", c.Analyzer.TextField)
	}
	if c.Backend.UpdateMethod != "PATCH" && c.Backend.UpdateMethod != "PUT" {
		return fmt.Errorf("backend.update_method must be PATCH or PUT, got %q", c.Backend.UpdateMethod)
	}
	if c.Backend.TimeoutSeconds <= 0 || c.Analyzer.TimeoutSeconds <= 0 {
		return fmt.Errorf("upstream timeouts must be positive")
	}
	return nil
}

func validateServiceURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing a host", name)
	}
	return nil
}

func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

func (a AnalyzerConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

func (c CacheConfig) ListTTL() time.Duration {
	return time.Duration(c.ListTTLSeconds) * time.Second
}

func (c CacheConfig) AnalysisTTL() time.Duration {
	return time.Duration(c.AnalysisTTLHours) * time.Hour
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
