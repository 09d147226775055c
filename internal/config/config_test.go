package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Retry.Delay)
	assert.Equal(t, 1.0, cfg.Retry.Multiplier)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Zero(t, cfg.Cache.TTL)
	assert.False(t, cfg.Cache.SingleFlight)
	assert.Equal(t, 12*time.Hour, cfg.Session.Lifetime)
	assert.False(t, cfg.HasDatabase())
}

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_API_KEY", "test_key")
	t.Setenv("LLM_MODEL", "gpt-4o-mini")
	t.Setenv("LLM_MAX_OUTPUT_TOKENS", "1024")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("RETRY_DELAY", "250ms")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("CACHE_SINGLE_FLIGHT", "true")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("DATABASE_URL", "postgres://localhost/polisci")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "test_key", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.EqualValues(t, 1024, cfg.LLM.MaxOutputTokens)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.Delay)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.True(t, cfg.Cache.SingleFlight)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.True(t, cfg.HasDatabase())
	assert.NoError(t, cfg.Validate())
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("RETRY_DELAY", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		cfg.LLM.APIKey = "key"
		return cfg
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.LLM.APIKey = ""
	assert.Error(t, cfg.Validate(), "gemini needs a key")

	cfg = valid()
	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = ""
	assert.NoError(t, cfg.Validate(), "openai-compatible servers may run without a key")

	cfg = valid()
	cfg.LLM.Provider = "claude"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Retry.MaxAttempts = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Cache.Backend = "memcached"
	assert.Error(t, cfg.Validate())
}
