package cache

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Producer computes a value on a cache miss
type Producer[V any] func(ctx context.Context) (V, error)

// With returns the value cached under key, or invokes produce, stores the
// result and returns it. A producer error is returned as is and nothing is
// stored. Concurrent misses on the same key are not deduplicated: each
// runs produce and the last write wins.
func With[V any](ctx context.Context, s Store[V], key string, produce Producer[V]) (V, error) {
	m := Memoizer[V]{store: s}
	return m.Do(ctx, key, produce)
}

// Memoizer wraps a Store with the With semantics plus optional behavior
type Memoizer[V any] struct {
	store Store[V]
	group *singleflight.Group
	keep  func(V) bool
}

// MemoOption configures a Memoizer
type MemoOption[V any] func(*Memoizer[V])

// WithSingleFlight collapses concurrent misses for one key into a single
// producer call. Off by default.
func WithSingleFlight[V any]() MemoOption[V] {
	return func(m *Memoizer[V]) { m.group = &singleflight.Group{} }
}

// WithKeep stores a produced value only when keep returns true. Values that
// are not kept are still returned to the caller.
func WithKeep[V any](keep func(V) bool) MemoOption[V] {
	return func(m *Memoizer[V]) { m.keep = keep }
}

// NewMemoizer creates a Memoizer over store
func NewMemoizer[V any](store Store[V], opts ...MemoOption[V]) *Memoizer[V] {
	m := &Memoizer[V]{store: store}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Store returns the underlying store
func (m *Memoizer[V]) Store() Store[V] {
	return m.store
}

// Do returns the cached value for key or produces it
func (m *Memoizer[V]) Do(ctx context.Context, key string, produce Producer[V]) (V, error) {
	if v, ok := m.store.Get(ctx, key); ok {
		zerolog.Ctx(ctx).Debug().Str("key", key).Msg("cache hit")
		return v, nil
	}

	if m.group == nil {
		return m.produce(ctx, key, produce)
	}

	res, err, shared := m.group.Do(key, func() (any, error) {
		// a flight that just finished may have stored the value
		if v, ok := m.store.Get(ctx, key); ok {
			return v, nil
		}
		return m.produce(ctx, key, produce)
	})
	if err != nil {
		var zero V
		return zero, err
	}
	if shared {
		zerolog.Ctx(ctx).Debug().Str("key", key).Msg("cache miss shared")
	}
	return res.(V), nil
}

func (m *Memoizer[V]) produce(ctx context.Context, key string, produce Producer[V]) (V, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("key", key).Msg("cache miss")

	v, err := produce(ctx)
	if err != nil {
		return v, err
	}

	if m.keep != nil && !m.keep(v) {
		logger.Debug().Str("key", key).Msg("cache skip store")
		return v, nil
	}

	if err := m.store.Set(ctx, key, v); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return v, nil
}
