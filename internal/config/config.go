package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Security   SecurityConfig   `yaml:"security" envconfig:"SECURITY"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Narrative  NarrativeConfig  `yaml:"narrative" envconfig:"NARRATIVE"`
	DataSource DataSourceConfig `yaml:"data_source" envconfig:"DATA_SOURCE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// NarrativeConfig configures the external text-generation service used for
// market narrative analysis. When APIKey is empty the deterministic offline
// narrative is used instead of the live service.
type NarrativeConfig struct {
	APIKey      string        `yaml:"api_key" envconfig:"API_KEY"`
	BaseURL     string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://api.openai.com/v1/chat/completions"`
	Model       string        `yaml:"model" envconfig:"MODEL" default:"gpt-3.5-turbo"`
	MaxTokens   int           `yaml:"max_tokens" envconfig:"MAX_TOKENS" default:"1000"`
	Temperature float64       `yaml:"temperature" envconfig:"TEMPERATURE" default:"0.7"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s"`
}

// DataSourceConfig configures the external flight data API. The synthetic
// sample generator is used whenever the API is unconfigured or unreachable.
type DataSourceConfig struct {
	BaseURL       string        `yaml:"base_url" envconfig:"BASE_URL"`
	APIKey        string        `yaml:"api_key" envconfig:"API_KEY"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"10s"`
	RPS           float64       `yaml:"rps" envconfig:"RPS" default:"2"`
	SampleEnabled bool          `yaml:"sample_enabled" envconfig:"SAMPLE_ENABLED" default:"true"`
}

// Load loads configuration from environment variables with an optional YAML
// overlay. Environment variables take precedence over the file.
func Load() (*Config, error) {
	var cfg Config

	// File values first so envconfig can override them
	configFile := configFilePath()
	if _, err := os.Stat(configFile); err == nil {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process("FLIGHTPULSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// configFilePath returns the config file location, overridable via env
func configFilePath() string {
	if path := os.Getenv("FLIGHTPULSE_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}

// validate checks configuration invariants that envconfig defaults cannot
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Narrative.Timeout <= 0 {
		return fmt.Errorf("narrative timeout must be positive, got %s", c.Narrative.Timeout)
	}
	if c.Narrative.MaxTokens <= 0 {
		return fmt.Errorf("narrative max tokens must be positive, got %d", c.Narrative.MaxTokens)
	}
	if c.Security.RateLimit.Enabled && c.Security.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive when enabled, got %f", c.Security.RateLimit.RPS)
	}
	return nil
}
