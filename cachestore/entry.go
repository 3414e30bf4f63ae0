package cachestore

import (
	"net/http"
	"strings"
	"time"
)

// Entry is a stored response snapshot. Only successful responses to
// idempotent requests are ever stored.
type Entry struct {
	Method     string      `json:"method"`
	URL        string      `json:"url"`
	StatusCode int         `json:"status_code"`
	Header     http.Header `json:"header,omitempty"`
	Body       []byte      `json:"body,omitempty"`
	StoredAt   time.Time   `json:"stored_at"`
}

// EntryKey derives the store key from the normalized request.
func EntryKey(method, url string) string {
	return strings.ToUpper(method) + " " + url
}
