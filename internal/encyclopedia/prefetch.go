package encyclopedia

import (
	"context"
	"errors"

	"github.com/briangreenhill/polisci/internal/navigation"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultPrefetchLimit bounds concurrent generator calls during a prefetch
const DefaultPrefetchLimit = 4

// Target names one entity to warm
type Target struct {
	Kind    navigation.Kind
	Payload navigation.Payload
}

// Prefetch warms the cache for targets with at most limit lookups in
// flight. Unavailable results are not an error. The returned error joins
// every lookup that failed outright.
func (s *Service) Prefetch(ctx context.Context, targets []Target, limit int) error {
	if limit <= 0 {
		limit = DefaultPrefetchLimit
	}
	logger := zerolog.Ctx(ctx)

	errs := make([]error, len(targets))
	var g errgroup.Group
	g.SetLimit(limit)

	for i, t := range targets {
		g.Go(func() error {
			res, err := s.Lookup(ctx, t.Kind, t.Payload)
			if err != nil {
				errs[i] = err
				return nil
			}
			logger.Debug().
				Str("kind", string(t.Kind)).
				Str("status", string(res.Status)).
				Msg("prefetched")
			return nil
		})
	}

	_ = g.Wait()
	return errors.Join(errs...)
}
