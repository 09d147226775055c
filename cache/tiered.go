package cache

import (
	"context"
	"errors"
)

// Tiered layers a fast front store over a shared back store. Reads try the
// front first; back hits are copied forward. Writes go to both.
type Tiered[V any] struct {
	front Store[V]
	back  Store[V]
}

// NewTiered combines two stores
func NewTiered[V any](front, back Store[V]) *Tiered[V] {
	return &Tiered[V]{front: front, back: back}
}

// Get implements Reader
func (t *Tiered[V]) Get(ctx context.Context, key string) (V, bool) {
	if v, ok := t.front.Get(ctx, key); ok {
		return v, true
	}
	v, ok := t.back.Get(ctx, key)
	if !ok {
		return v, false
	}
	// promotion failure only costs a future back read
	_ = t.front.Set(ctx, key, v)
	return v, true
}

// Has implements Reader
func (t *Tiered[V]) Has(ctx context.Context, key string) bool {
	return t.front.Has(ctx, key) || t.back.Has(ctx, key)
}

// Set implements Writer
func (t *Tiered[V]) Set(ctx context.Context, key string, value V) error {
	return errors.Join(t.front.Set(ctx, key, value), t.back.Set(ctx, key, value))
}
