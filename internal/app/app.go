// Package app assembles the services shared by the API, the worker and
// the CLI from configuration
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/polisci/cache"
	"github.com/briangreenhill/polisci/internal/config"
	"github.com/briangreenhill/polisci/internal/encyclopedia"
	"github.com/briangreenhill/polisci/internal/llm"
	"github.com/briangreenhill/polisci/internal/prompt"
)

// NewLogger builds the root logger. An unknown level falls back to info.
func NewLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// NewGenerator returns the configured content generator
func NewGenerator(ctx context.Context, cfg config.LLMConfig) (llm.Generator, error) {
	httpClient := &http.Client{Timeout: 90 * time.Second}
	switch cfg.Provider {
	case "gemini":
		return llm.NewGemini(ctx, cfg.APIKey, httpClient)
	case "openai":
		return llm.NewOpenAICompat(cfg.BaseURL, cfg.APIKey, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

// NewRetrier wraps gen with the configured retry policy
func NewRetrier(gen llm.Generator, cfg config.RetryConfig, logger zerolog.Logger) *llm.Retrier {
	return llm.NewRetrier(gen,
		llm.WithPolicy(llm.Policy{
			MaxAttempts: cfg.MaxAttempts,
			Delay:       cfg.Delay,
			Multiplier:  cfg.Multiplier,
		}),
		llm.WithLogger(logger),
	)
}

// NewRedis creates a client for the shared Redis instance
func NewRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// AsynqRedis returns the asynq connection options for the shared Redis
func AsynqRedis(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewContentStore builds the cache backend for generated content. The
// redis backend keeps a per-process memory tier in front of Redis; rdb may
// be nil for the other backends.
func NewContentStore(cfg config.CacheConfig, rdb redis.UniversalClient, logger zerolog.Logger) (cache.Store[encyclopedia.Envelope], error) {
	switch cfg.Backend {
	case "", "memory":
		return cache.NewMemory[encyclopedia.Envelope](), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("redis cache backend needs a redis client")
		}
		back := cache.NewRedisStore[encyclopedia.Envelope](rdb,
			cache.WithTTL(cfg.TTL),
			cache.WithRedisLogger(logger),
		)
		return cache.NewTiered[encyclopedia.Envelope](cache.NewMemory[encyclopedia.Envelope](), back), nil
	case "file":
		dir := cfg.Dir
		if dir == "" {
			d, err := cache.DefaultDir("content")
			if err != nil {
				return nil, fmt.Errorf("resolve cache dir: %w", err)
			}
			dir = d
		}
		fs, err := cache.NewFileStore[encyclopedia.Envelope](dir)
		if err != nil {
			return nil, fmt.Errorf("create file cache: %w", err)
		}
		return fs, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// NewService wires the encyclopedia over gen and store
func NewService(cfg *config.Config, gen llm.Generator, store cache.Store[encyclopedia.Envelope], logger zerolog.Logger) (*encyclopedia.Service, error) {
	prompts, err := prompt.New(cfg.PromptDir, logger)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	var memoOpts []cache.MemoOption[encyclopedia.Envelope]
	if cfg.Cache.SingleFlight {
		memoOpts = append(memoOpts, cache.WithSingleFlight[encyclopedia.Envelope]())
	}

	return encyclopedia.NewService(
		NewRetrier(gen, cfg.Retry, logger),
		prompts,
		store,
		encyclopedia.Options{
			Model:           cfg.LLM.Model,
			MaxOutputTokens: cfg.LLM.MaxOutputTokens,
			Search:          cfg.LLM.Search,
		},
		memoOpts...,
	), nil
}
