package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/polisci/internal/encyclopedia"
	"github.com/briangreenhill/polisci/internal/navigation"
)

// ErrUnavailable is returned when the generator could not produce content,
// so asynq retries the task later
var ErrUnavailable = errors.New("content unavailable")

// Resolver looks up overlay content
type Resolver interface {
	Lookup(ctx context.Context, kind navigation.Kind, p navigation.Payload) (encyclopedia.Result, error)
}

// PrefetchHandler resolves prefetch tasks through the encyclopedia so the
// shared cache holds the result for later API reads
type PrefetchHandler struct {
	resolver Resolver
	logger   zerolog.Logger
}

func NewPrefetchHandler(r Resolver, logger zerolog.Logger) *PrefetchHandler {
	return &PrefetchHandler{resolver: r, logger: logger}
}

// ProcessTask implements asynq.Handler
func (h *PrefetchHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p PrefetchPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		h.logger.Error().Err(err).Msg("bad prefetch payload")
		return fmt.Errorf("decode prefetch payload: %v: %w", err, asynq.SkipRetry)
	}
	payload, err := p.Decode()
	if err != nil {
		h.logger.Error().Err(err).Str("kind", string(p.Kind)).Msg("bad prefetch payload")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	logger := h.logger.With().Str("kind", string(p.Kind)).Str("id", fmt.Sprint(payload)).Logger()
	ctx = logger.WithContext(ctx)

	start := time.Now()
	res, err := h.resolver.Lookup(ctx, p.Kind, payload)
	duration := time.Since(start)

	if err != nil {
		if !isRetryableError(err) {
			logger.Error().Err(err).Dur("duration", duration).Msg("permanent prefetch error, dropping job")
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		logger.Warn().Err(err).Dur("duration", duration).Msg("retryable prefetch error")
		return err
	}
	if res.Status != encyclopedia.StatusLoaded {
		logger.Warn().Dur("duration", duration).Msg("prefetch produced fallback, will retry")
		return ErrUnavailable
	}

	logger.Info().Dur("duration", duration).Msg("prefetch done")
	return nil
}

// isRetryableError reports whether a lookup failure may succeed later
func isRetryableError(err error) bool {
	switch {
	case errors.Is(err, navigation.ErrBadPayload),
		errors.Is(err, encyclopedia.ErrUnknownKind),
		errors.Is(err, context.Canceled):
		return false
	}
	return true
}
