package resilience

import (
	"context"
	"log/slog"
	"time"

	"github.com/giantswarm/backoff"
)

const (
	maxRetries    = 3
	retryInterval = 1 * time.Second
)

// Retry runs op with bounded retries, logging each retried failure. The
// context is consulted before every attempt; a cancelled context is a
// permanent failure and stops the retry loop immediately.
func Retry(ctx context.Context, logger *slog.Logger, label string, op func() error) error {
	wrapped := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		return op()
	}

	notify := func(err error, delay time.Duration) {
		logger.Warn("operation failed, retrying", "operation", label, "delay", delay, "error", err)
	}

	b := backoff.NewMaxRetries(maxRetries, retryInterval)
	return backoff.RetryNotify(wrapped, b, notify)
}

// Result carries a fetched value and how it was obtained.
type Result[T any] struct {
	Value T

	// Fallback is true when the fallback source supplied the value
	Fallback bool

	// PrimaryErr records why the primary source failed, when it did
	PrimaryErr error
}

// Fetch obtains a value from the primary source, consulting the fallback
// source when the primary fails. It never panics and only returns an error
// when both sources fail; the primary failure is always preserved in the
// result so callers can surface the reason to users.
func Fetch[T any](ctx context.Context, logger *slog.Logger, label string, primary, fallback func(context.Context) (T, error)) (Result[T], error) {
	value, err := primary(ctx)
	if err == nil {
		return Result[T]{Value: value}, nil
	}

	logger.Warn("primary source failed, falling back", "source", label, "error", err)

	fallbackValue, fallbackErr := fallback(ctx)
	if fallbackErr != nil {
		logger.Error("fallback source failed", "source", label, "error", fallbackErr)
		return Result[T]{Fallback: true, PrimaryErr: err}, fallbackErr
	}

	return Result[T]{Value: fallbackValue, Fallback: true, PrimaryErr: err}, nil
}
