package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// RetryConfig holds retry configuration for catalog fetches
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      2,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// RetryingSource retries transient failures of the wrapped source with exponential backoff.
// It is composed at the call site; the pipeline itself never retries a fetch.
type RetryingSource struct {
	src    Source
	cfg    RetryConfig
	logger zerolog.Logger
}

// NewRetryingSource wraps src
func NewRetryingSource(src Source, cfg RetryConfig, logger zerolog.Logger) *RetryingSource {
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = DefaultRetryConfig().InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = DefaultRetryConfig().MaxInterval
	}
	return &RetryingSource{src: src, cfg: cfg, logger: logger}
}

// FetchAllItems implements Source
func (r *RetryingSource) FetchAllItems(ctx context.Context) ([]Item, error) {
	return retryFetch(ctx, r, "items", func() ([]Item, error) {
		return r.src.FetchAllItems(ctx)
	})
}

// FetchCategories implements Source
func (r *RetryingSource) FetchCategories(ctx context.Context) ([]string, error) {
	return retryFetch(ctx, r, "categories", func() ([]string, error) {
		return r.src.FetchCategories(ctx)
	})
}

func (r *RetryingSource) policy(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.cfg.InitialInterval
	eb.MaxInterval = r.cfg.MaxInterval
	eb.MaxElapsedTime = 0 // bounded by MaxRetries and ctx
	return backoff.WithContext(backoff.WithMaxRetries(eb, r.cfg.MaxRetries), ctx)
}

func retryFetch[T any](ctx context.Context, r *RetryingSource, what string, fetch func() (T, error)) (T, error) {
	op := func() (T, error) {
		v, err := fetch()
		if err != nil && !isTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}
	notify := func(err error, wait time.Duration) {
		r.logger.Warn().
			Err(err).
			Str("fetch", what).
			Dur("retry_in", wait).
			Msg("catalog fetch failed, retrying")
	}
	return backoff.RetryNotifyWithData(op, r.policy(ctx), notify)
}

// isTransient reports whether a fetch error is worth retrying
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return true
}
