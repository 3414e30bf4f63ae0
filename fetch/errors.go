package fetch

import (
	"errors"
	"net/http"

	"github.com/AliGym19/voiceverse-sub001/errcode"
)

const (
	errCodeTransport    = 1
	errCodeBuildRequest = 2
	errCodeServerStatus = 3
)

var (
	// ErrTransport marks failures where no response reached the client.
	// These are the only failures eligible for store fallback or queueing.
	ErrTransport = errcode.New(
		errcode.ModuleFetch, errCodeTransport,
		"fetch", "transport failure",
		http.StatusServiceUnavailable,
	)

	// ErrBuildRequest marks an unbuildable request (malformed URL).
	ErrBuildRequest = errcode.New(
		errcode.ModuleFetch, errCodeBuildRequest,
		"fetch", "build request failed",
		http.StatusInternalServerError,
	)

	// ErrServerStatus is used internally to drive retries on 5xx/429.
	ErrServerStatus = errcode.New(
		errcode.ModuleFetch, errCodeServerStatus,
		"fetch", "retryable server status",
		http.StatusBadGateway,
	)
)

// IsTransportError reports whether err means the network was unreachable,
// as opposed to a reachable server answering with an error status.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransport)
}
