// Package encyclopedia turns entity keys into typed, generated content
package encyclopedia

import (
	"context"
	"errors"
	"slices"

	"github.com/briangreenhill/polisci/internal/navigation"
)

// ErrUnknownKind is returned when no resolver serves a kind
var ErrUnknownKind = errors.New("unknown entity kind")

// Result is the untyped form of Content returned through the registry
type Result struct {
	Kind   navigation.Kind `json:"kind"`
	Status Status          `json:"status"`
	Data   any             `json:"data"`
}

// Resolver produces the content for one overlay kind
type Resolver interface {
	// Kind returns the overlay kind served
	Kind() navigation.Kind

	// Resolve fetches the content for payload
	Resolve(ctx context.Context, p navigation.Payload) (Result, error)
}

// ResolverFunc adapts a function to Resolver
type ResolverFunc struct {
	K  navigation.Kind
	Fn func(ctx context.Context, p navigation.Payload) (Result, error)
}

// Kind implements Resolver
func (r ResolverFunc) Kind() navigation.Kind { return r.K }

// Resolve implements Resolver
func (r ResolverFunc) Resolve(ctx context.Context, p navigation.Payload) (Result, error) {
	return r.Fn(ctx, p)
}

// Registry manages resolvers by kind
type Registry struct {
	resolvers map[navigation.Kind]Resolver
}

// NewRegistry creates a new resolver registry
func NewRegistry() *Registry {
	return &Registry{
		resolvers: make(map[navigation.Kind]Resolver),
	}
}

// Register adds a resolver, replacing any previous one for the same kind
func (r *Registry) Register(res Resolver) {
	r.resolvers[res.Kind()] = res
}

// Get retrieves a resolver by kind
func (r *Registry) Get(kind navigation.Kind) (Resolver, bool) {
	res, exists := r.resolvers[kind]
	return res, exists
}

// List returns all registered kinds, sorted
func (r *Registry) List() []navigation.Kind {
	kinds := make([]navigation.Kind, 0, len(r.resolvers))
	for k := range r.resolvers {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}
