// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	BaseURL  string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	LLM      LLMConfig      `envPrefix:"LLM_"`
	Retry    RetryConfig    `envPrefix:"RETRY_"`
	Cache    CacheConfig    `envPrefix:"CACHE_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Database DatabaseConfig `envPrefix:"DATABASE_"`
	Session  SessionConfig  `envPrefix:"SESSION_"`

	// PromptDir optionally overrides built-in prompt templates
	PromptDir string `env:"PROMPT_DIR"`
}

// LLMConfig selects and configures the content generator
type LLMConfig struct {
	Provider        string `env:"PROVIDER" envDefault:"gemini"` // gemini | openai
	APIKey          string `env:"API_KEY"`
	Model           string `env:"MODEL" envDefault:"gemini-2.5-flash"`
	BaseURL         string `env:"BASE_URL" envDefault:"https://api.openai.com/v1"`
	MaxOutputTokens int32  `env:"MAX_OUTPUT_TOKENS" envDefault:"4096"`
	Search          bool   `env:"SEARCH" envDefault:"false"`
}

// RetryConfig bounds retries of generation calls
type RetryConfig struct {
	MaxAttempts int           `env:"MAX_ATTEMPTS" envDefault:"3"`
	Delay       time.Duration `env:"DELAY" envDefault:"1s"`
	Multiplier  float64       `env:"MULTIPLIER" envDefault:"1"`
}

// CacheConfig controls generated content memoization
type CacheConfig struct {
	Backend      string        `env:"BACKEND" envDefault:"memory"` // memory | redis | file
	Dir          string        `env:"DIR"`
	TTL          time.Duration `env:"TTL" envDefault:"0"`
	SingleFlight bool          `env:"SINGLE_FLIGHT" envDefault:"false"`
}

// RedisConfig is shared by the redis cache backend and the job queue
type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// DatabaseConfig points at the Postgres instance for saved items
type DatabaseConfig struct {
	URL string `env:"URL"`
}

// SessionConfig controls browser sessions
type SessionConfig struct {
	Lifetime     time.Duration `env:"LIFETIME" envDefault:"12h"`
	SecureCookie bool          `env:"SECURE_COOKIE" envDefault:"false"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// HasDatabase returns true if a Postgres URL is configured
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// Validate checks the configuration for values the services cannot run with
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "gemini":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("LLM_API_KEY is required for the gemini provider")
		}
	case "openai":
		if c.LLM.BaseURL == "" {
			return fmt.Errorf("LLM_BASE_URL is required for the openai provider")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)
	}

	if c.Retry.MaxAttempts < 1 || c.Retry.MaxAttempts > 10 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be between 1-10, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.Delay < 0 {
		return fmt.Errorf("RETRY_DELAY must not be negative")
	}

	switch c.Cache.Backend {
	case "memory", "redis", "file":
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend)
	}

	return nil
}
