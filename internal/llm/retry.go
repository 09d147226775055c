package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Policy bounds the retry loop. The zero value is not usable; start from
// DefaultPolicy.
type Policy struct {
	MaxAttempts int           // total calls including the first
	Delay       time.Duration // wait before the first retry
	Multiplier  float64       // growth per retry; 1 keeps the delay fixed
}

// DefaultPolicy makes three attempts one second apart
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, Delay: time.Second, Multiplier: 1}
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// wait returns the pause after the given failed attempt (1-based)
func (p Policy) wait(attempt int) time.Duration {
	m := p.Multiplier
	if m <= 0 {
		m = 1
	}
	return time.Duration(float64(p.Delay) * math.Pow(m, float64(attempt-1)))
}

// StatusError is a generator failure with an HTTP-like status code
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("generator status %d: %s", e.Code, e.Message)
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsRetryable determines if a generation failure should trigger another
// attempt. Unknown failures (network, decode, empty output) are retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch {
		case se.Code == http.StatusRequestTimeout, se.Code == http.StatusTooManyRequests:
			return true
		case se.Code >= 500:
			return true
		case se.Code >= 400:
			// bad request, auth failures, unknown model
			return false
		}
	}

	return true
}

// Retrier makes a Generator resilient to transient failure
type Retrier struct {
	gen    Generator
	policy Policy
	logger zerolog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// Option configures a Retrier
type Option func(*Retrier)

// WithPolicy overrides DefaultPolicy
func WithPolicy(p Policy) Option {
	return func(r *Retrier) { r.policy = p }
}

// WithLogger sets the logger used when the request context carries none
func WithLogger(l zerolog.Logger) Option {
	return func(r *Retrier) { r.logger = l }
}

// NewRetrier wraps gen
func NewRetrier(gen Generator, opts ...Option) *Retrier {
	r := &Retrier{
		gen:    gen,
		policy: DefaultPolicy(),
		logger: zerolog.Nop(),
		sleep:  sleepContext,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Policy returns the active retry policy
func (r *Retrier) Policy() Policy {
	return r.policy
}

// GenerateWithRetry calls the generator until it succeeds, a non-retryable
// error occurs, or the attempt bound is reached. A nil response or empty
// text counts as a failure. The response text is not validated as JSON.
func (r *Retrier) GenerateWithRetry(ctx context.Context, req Request) (*Response, error) {
	logger := r.log(ctx)
	attempts := r.policy.attempts()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := r.gen.Generate(ctx, req)
		if err == nil && (resp == nil || resp.Text == "") {
			err = ErrEmptyResponse
		}
		if err == nil {
			if attempt > 1 {
				logger.Info().Str("model", req.Model).Int("attempt", attempt).Msg("generation recovered")
			}
			return resp, nil
		}

		lastErr = err
		if ctx.Err() != nil || !IsRetryable(err) {
			return nil, err
		}
		if attempt == attempts {
			break
		}

		wait := r.policy.wait(attempt)
		logger.Warn().Err(err).
			Str("model", req.Model).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("generation failed, retrying")
		if err := r.sleep(ctx, wait); err != nil {
			return nil, fmt.Errorf("generation aborted after %d attempts: %w", attempt, err)
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, lastErr)
}

// GenerateWithFallback never fails: when GenerateWithRetry gives up, it
// returns a synthetic response whose text is fallback encoded as JSON.
func (r *Retrier) GenerateWithFallback(ctx context.Context, req Request, fallback any) *Response {
	resp, err := r.GenerateWithRetry(ctx, req)
	if err == nil {
		return resp
	}

	r.log(ctx).Warn().Err(err).Str("model", req.Model).Msg("generation unavailable, using fallback")
	data, mErr := json.Marshal(fallback)
	if mErr != nil {
		// SafeParse turns an empty text back into the caller's fallback
		return &Response{Fallback: true}
	}
	return &Response{Text: string(data), Fallback: true}
}

func (r *Retrier) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &r.logger
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
