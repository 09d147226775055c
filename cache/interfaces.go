// Package cache provides injectable memoization stores for generated
// content, keyed by caller-built strings like "country_France".
package cache

import (
	"context"
	"time"
)

// Entry represents a cached value with metadata
type Entry[V any] struct {
	Key       string    `json:"key"`
	Value     V         `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// Reader defines the interface for reading cache entries
type Reader[V any] interface {
	// Get returns the value for key and true if present
	Get(ctx context.Context, key string) (V, bool)

	// Has reports whether key is present without decoding the value
	Has(ctx context.Context, key string) bool
}

// Writer defines the interface for writing cache entries
type Writer[V any] interface {
	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key string, value V) error
}

// Store is the main interface that combines all cache operations.
// Implementations never evict on their own unless configured to.
type Store[V any] interface {
	Reader[V]
	Writer[V]
}
