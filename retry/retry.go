// Package retry implements bounded retries with pluggable backoff and
// retry conditions. Used by the fetch client and the install step of the
// lifecycle controller; the offline queue deliberately does not retry
// within a drain pass.
package retry

import (
	"context"
	"errors"
	"time"
)

// Do runs operation, retrying on failure per the options. Returns the
// aggregated error when every attempt fails.
func Do(ctx context.Context, operation func() error, opts ...Option) error {
	_, err := DoWithData(ctx, func() (struct{}, error) {
		return struct{}{}, operation()
	}, opts...)
	return err
}

// DoWithData runs operation and returns its result, retrying on failure.
func DoWithData[T any](ctx context.Context, operation func() (T, error), opts ...Option) (T, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var result T
	var errs []error

	for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		var err error
		result, err = operation()
		if err == nil {
			return result, nil
		}
		errs = append(errs, err)

		if !cfg.condition.ShouldRetry(err, attempt) || attempt == cfg.maxAttempts {
			return result, &MultiError{Errors: errs, Attempts: attempt}
		}

		if cfg.onRetry != nil {
			cfg.onRetry(attempt, err)
		}

		backoff := cfg.backoff.Next(attempt)
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < backoff {
			errs = append(errs, context.DeadlineExceeded)
			return result, &MultiError{Errors: errs, Attempts: attempt}
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return result, ctx.Err()
		}
	}

	return result, &MultiError{Errors: errs, Attempts: cfg.maxAttempts}
}

// GetAttempts extracts the attempt count from a retry error, 0 otherwise.
func GetAttempts(err error) int {
	var multiErr *MultiError
	if errors.As(err, &multiErr) {
		return multiErr.Attempts
	}
	return 0
}
