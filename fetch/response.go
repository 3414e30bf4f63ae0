package fetch

import (
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// Response is an in-memory snapshot of an HTTP response.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsClientError reports a 4xx status.
func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

// IsServerError reports a 5xx status.
func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500 && r.StatusCode < 600
}

// JSON unmarshals the body into v.
func (r *Response) JSON(v interface{}) error {
	if v == nil {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// String returns the body as a string.
func (r *Response) String() string {
	return string(r.Body)
}

func newResponse(httpResp *http.Response, duration time.Duration) (*Response, error) {
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Header:     httpResp.Header.Clone(),
		Body:       body,
		Duration:   duration,
	}, nil
}
