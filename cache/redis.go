package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisStore keeps JSON-encoded entries in Redis so several processes
// (API and worker) share one cache.
type RedisStore[V any] struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration // zero means entries never expire
	logger zerolog.Logger
}

// RedisOption configures a RedisStore
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix string
	ttl    time.Duration
	logger zerolog.Logger
}

// WithPrefix namespaces every key written by the store
func WithPrefix(prefix string) RedisOption {
	return func(o *redisOptions) { o.prefix = prefix }
}

// WithTTL sets an expiry on written entries. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(o *redisOptions) { o.ttl = ttl }
}

// WithRedisLogger sets the logger used for read failures
func WithRedisLogger(l zerolog.Logger) RedisOption {
	return func(o *redisOptions) { o.logger = l }
}

// NewRedisStore wraps an existing client
func NewRedisStore[V any](rdb redis.UniversalClient, opts ...RedisOption) *RedisStore[V] {
	o := redisOptions{prefix: "polisci:cache:", logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisStore[V]{rdb: rdb, prefix: o.prefix, ttl: o.ttl, logger: o.logger}
}

// Get implements Reader. Connection and decode failures are logged and
// reported as a miss so the caller regenerates the value.
func (rs *RedisStore[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	data, err := rs.rdb.Get(ctx, rs.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			rs.logger.Warn().Err(err).Str("key", key).Msg("redis cache read failed")
		}
		return zero, false
	}

	var entry Entry[V]
	if err := json.Unmarshal(data, &entry); err != nil {
		rs.logger.Warn().Err(err).Str("key", key).Msg("redis cache entry corrupt")
		return zero, false
	}
	return entry.Value, true
}

// Has implements Reader
func (rs *RedisStore[V]) Has(ctx context.Context, key string) bool {
	n, err := rs.rdb.Exists(ctx, rs.prefix+key).Result()
	return err == nil && n > 0
}

// Set implements Writer
func (rs *RedisStore[V]) Set(ctx context.Context, key string, value V) error {
	data, err := json.Marshal(Entry[V]{Key: key, Value: value, CreatedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := rs.rdb.Set(ctx, rs.prefix+key, data, rs.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
