package retry

import "errors"

// RetryCondition decides whether a failed attempt should be retried.
type RetryCondition interface {
	ShouldRetry(err error, attempt int) bool
}

type alwaysRetry struct{}

// AlwaysRetry retries any non-nil error.
func AlwaysRetry() RetryCondition { return &alwaysRetry{} }

func (c *alwaysRetry) ShouldRetry(err error, attempt int) bool {
	return err != nil
}

type neverRetry struct{}

// NeverRetry disables retries.
func NeverRetry() RetryCondition { return &neverRetry{} }

func (c *neverRetry) ShouldRetry(error, int) bool { return false }

type retryOnErrors struct {
	targets []error
}

// RetryOnErrors retries only when the error matches one of the targets
// via errors.Is.
func RetryOnErrors(targets ...error) RetryCondition {
	return &retryOnErrors{targets: targets}
}

func (c *retryOnErrors) ShouldRetry(err error, attempt int) bool {
	if err == nil {
		return false
	}
	for _, target := range c.targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type retryOnCondition struct {
	fn func(error) bool
}

// RetryOnCondition retries when fn reports the error as retryable.
func RetryOnCondition(fn func(error) bool) RetryCondition {
	return &retryOnCondition{fn: fn}
}

func (c *retryOnCondition) ShouldRetry(err error, attempt int) bool {
	if err == nil {
		return false
	}
	return c.fn(err)
}
