package retry

import (
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy computes the delay before the next attempt (attempt
// numbering starts at 1).
type BackoffStrategy interface {
	Next(attempt int) time.Duration
}

type backoffConfig struct {
	multiplier float64
	maxDelay   time.Duration
	jitter     float64
}

func defaultBackoffConfig() *backoffConfig {
	return &backoffConfig{
		multiplier: 2.0,
		maxDelay:   30 * time.Second,
		jitter:     0.2,
	}
}

// BackoffOption customizes a backoff strategy.
type BackoffOption func(*backoffConfig)

// WithMultiplier sets the exponential multiplier.
func WithMultiplier(m float64) BackoffOption {
	return func(c *backoffConfig) {
		if m > 0 {
			c.multiplier = m
		}
	}
}

// WithMaxDelay caps the computed delay.
func WithMaxDelay(d time.Duration) BackoffOption {
	return func(c *backoffConfig) {
		if d > 0 {
			c.maxDelay = d
		}
	}
}

// WithJitter sets the jitter ratio (0.0 - 1.0).
func WithJitter(ratio float64) BackoffOption {
	return func(c *backoffConfig) {
		if ratio >= 0 && ratio <= 1.0 {
			c.jitter = ratio
		}
	}
}

type exponentialBackoff struct {
	base time.Duration
	cfg  *backoffConfig
}

// ExponentialBackoff grows the delay by the multiplier each attempt, with
// jitter, capped at the max delay.
func ExponentialBackoff(base time.Duration, opts ...BackoffOption) BackoffStrategy {
	cfg := defaultBackoffConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &exponentialBackoff{base: base, cfg: cfg}
}

func (b *exponentialBackoff) Next(attempt int) time.Duration {
	delay := float64(b.base) * math.Pow(b.cfg.multiplier, float64(attempt-1))
	if delay > float64(b.cfg.maxDelay) {
		delay = float64(b.cfg.maxDelay)
	}
	if b.cfg.jitter > 0 {
		// Spread delays in [delay*(1-jitter), delay*(1+jitter)].
		delta := delay * b.cfg.jitter
		delay = delay - delta + rand.Float64()*2*delta
	}
	return time.Duration(delay)
}

type fixedBackoff struct {
	delay time.Duration
}

// FixedBackoff waits the same delay between every attempt.
func FixedBackoff(delay time.Duration) BackoffStrategy {
	return &fixedBackoff{delay: delay}
}

func (b *fixedBackoff) Next(int) time.Duration {
	return b.delay
}
