// Package fetch wraps net/http for the agent: bounded timeouts, optional
// retries, byte-snapshot responses and transport-error classification so
// callers can tell "the network is gone" from "the server said no".
package fetch

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/AliGym19/voiceverse-sub001/errcode"
	"github.com/AliGym19/voiceverse-sub001/logger"
	"github.com/AliGym19/voiceverse-sub001/retry"
	"go.uber.org/zap"
)

// Client issues HTTP requests against the origin server.
type Client struct {
	httpClient *http.Client
	config     *config
	log        *logger.CtxZapLogger
}

// NewClient creates a fetch client.
func NewClient(opts ...Option) *Client {
	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	transport := cfg.transport
	if transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.timeout,
			Transport: transport,
		},
		config: cfg,
		log:    logger.GetLogger("fetch"),
	}
}

// Do executes one request. body may be nil. The returned Response is a
// full in-memory snapshot; the transport connection is already released.
func (c *Client) Do(ctx context.Context, method, url string, body []byte, header http.Header) (*Response, error) {
	fullURL := c.resolveURL(url)

	operation := func() (*Response, error) {
		return c.doRequest(ctx, method, fullURL, body, header)
	}

	if len(c.config.retryOpts) > 0 {
		resp, err := retry.DoWithData(ctx, func() (*Response, error) {
			resp, err := operation()
			if err != nil {
				return nil, err
			}
			// 5xx and 429 are worth another attempt, other statuses are
			// the server's answer and must pass through.
			if resp.IsServerError() || resp.StatusCode == http.StatusTooManyRequests {
				return nil, ErrServerStatus.WithData("status", resp.StatusCode).WithData("response", resp)
			}
			return resp, nil
		}, c.config.retryOpts...)
		if err != nil {
			if last := extractResponse(err); last != nil {
				return last, nil
			}
			return nil, err
		}
		return resp, nil
	}

	return operation()
}

// Get is shorthand for Do with GET and no body.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, url, nil, nil)
}

// Head is shorthand for Do with HEAD and no body.
func (c *Client) Head(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, http.MethodHead, url, nil, nil)
}

func (c *Client) doRequest(ctx context.Context, method, url string, body []byte, header http.Header) (*Response, error) {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, ErrBuildRequest.Wrap(err)
	}
	for k, vs := range header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.DebugCtx(ctx, "transport failure",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err))
		return nil, ErrTransport.Wrap(err)
	}

	resp, err := newResponse(httpResp, time.Since(start))
	if err != nil {
		return nil, ErrTransport.Wrap(err)
	}
	return resp, nil
}

func (c *Client) resolveURL(url string) string {
	if c.config.baseURL == "" ||
		strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return strings.TrimRight(c.config.baseURL, "/") + "/" + strings.TrimLeft(url, "/")
}

// extractResponse digs the last server response out of a retry error so
// exhausted retries still deliver the origin's answer. The response is
// carried in the LayeredError context data attached per attempt.
func extractResponse(err error) *Response {
	var multiErr *retry.MultiError
	if !errors.As(err, &multiErr) {
		return nil
	}
	var resp *Response
	for _, attemptErr := range multiErr.Errors {
		var le *errcode.LayeredError
		if errors.As(attemptErr, &le) {
			if r, ok := le.Data()["response"].(*Response); ok {
				resp = r
			}
		}
	}
	return resp
}
