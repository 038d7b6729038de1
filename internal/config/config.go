package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// minJWTSecretLength is the shortest HS256 secret accepted outside dev mode.
const minJWTSecretLength = 32

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	LLM       LLMConfig       `yaml:"llm"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LLMConfig contains chat-completion provider settings.
type LLMConfig struct {
	APIKey         string   `yaml:"-"` // env-only, never in YAML
	BaseURL        string   `yaml:"base_url"`
	Model          string   `yaml:"model"`
	RequestTimeout Duration `yaml:"request_timeout"`
}

// AuthConfig contains identity token verification settings.
type AuthConfig struct {
	JWTSecret string `yaml:"-"` // env-only, never in YAML
	Issuer    string `yaml:"issuer"`
	Audience  string `yaml:"audience"`
	AdminRole string `yaml:"admin_role"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// RateLimitConfig bounds model-backed requests per user. A zero burst disables it.
type RateLimitConfig struct {
	GenerationBurst    int      `yaml:"generation_burst"`
	GenerationInterval Duration `yaml:"generation_interval"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// Returns an immutable Config suitable for concurrent read access.
func Load() (*Config, error) {
	cfg := newDefaults()

	// Determine config path
	configPath := getEnv("IDEAFORGE_CONFIG_PATH", "config/ideaforge.yaml")

	// Load YAML file if it exists (missing file is not an error)
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific path.
// Used by tests and when the caller names the file explicitly.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	// Load YAML file (file must exist for this function)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newDefaults returns a Config with all default values.
// A validation run makes five sequential model calls, so the write timeout
// leaves room for several request timeouts.
func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(5 * time.Minute),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Database: DatabaseConfig{
			Path: "data/ideaforge.db",
		},
		LLM: LLMConfig{
			Model:          "gpt-4o-mini",
			RequestTimeout: Duration(60 * time.Second),
		},
		Auth: AuthConfig{
			AdminRole: "admin",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		RateLimit: RateLimitConfig{
			GenerationBurst:    20,
			GenerationInterval: Duration(6 * time.Second),
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
// Missing file is not an error; we just use defaults.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("IDEAFORGE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	envDuration("IDEAFORGE_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("IDEAFORGE_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("IDEAFORGE_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	// Database
	if v := os.Getenv("IDEAFORGE_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// LLM (OPENAI_API_KEY is industry convention)
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("IDEAFORGE_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("IDEAFORGE_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	envDuration("IDEAFORGE_LLM_REQUEST_TIMEOUT", &cfg.LLM.RequestTimeout)

	// Auth
	if v := os.Getenv("IDEAFORGE_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("IDEAFORGE_JWT_ISSUER"); v != "" {
		cfg.Auth.Issuer = v
	}
	if v := os.Getenv("IDEAFORGE_JWT_AUDIENCE"); v != "" {
		cfg.Auth.Audience = v
	}
	if v := os.Getenv("IDEAFORGE_ADMIN_ROLE"); v != "" {
		cfg.Auth.AdminRole = v
	}

	// Log
	if v := os.Getenv("IDEAFORGE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("IDEAFORGE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	// Metrics
	if v := os.Getenv("IDEAFORGE_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("IDEAFORGE_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}

	// Rate limit
	if v := os.Getenv("IDEAFORGE_GENERATION_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.GenerationBurst = n
		}
	}
	envDuration("IDEAFORGE_GENERATION_INTERVAL", &cfg.RateLimit.GenerationInterval)
}

func envDuration(key string, dst *Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = Duration(d)
		}
	}
}

// DevMode reports whether IDEAFORGE_DEV_MODE is enabled.
func DevMode() bool {
	return os.Getenv("IDEAFORGE_DEV_MODE") == "true"
}

// validate checks that required configuration values are set.
// In dev mode (IDEAFORGE_DEV_MODE=true), secret validation is skipped.
func (c *Config) validate() error {
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path %q must start with /", c.Metrics.Path)
	}
	if c.RateLimit.GenerationBurst > 0 && c.RateLimit.GenerationInterval <= 0 {
		return errors.New("rate_limit.generation_interval must be positive")
	}

	if DevMode() {
		return nil
	}

	if c.LLM.APIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("IDEAFORGE_JWT_SECRET is required")
	}
	if len(c.Auth.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("IDEAFORGE_JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
