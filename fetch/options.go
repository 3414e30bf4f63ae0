package fetch

import (
	"net/http"
	"time"

	"github.com/AliGym19/voiceverse-sub001/retry"
)

type config struct {
	baseURL   string
	timeout   time.Duration
	transport http.RoundTripper
	retryOpts []retry.Option
}

func newConfig() *config {
	return &config{
		timeout: 10 * time.Second,
	}
}

// Option configures the client.
type Option func(*config)

// WithBaseURL prefixes relative request URLs.
func WithBaseURL(baseURL string) Option {
	return func(c *config) {
		c.baseURL = baseURL
	}
}

// WithTimeout bounds each request end to end.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTransport replaces the HTTP transport. Test hook.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *config) {
		c.transport = rt
	}
}

// WithRetry enables retries with the given retry options.
func WithRetry(opts ...retry.Option) Option {
	return func(c *config) {
		c.retryOpts = opts
	}
}
