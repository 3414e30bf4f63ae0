package agent

import (
	"net/http"

	"github.com/AliGym19/voiceverse-sub001/errcode"
)

const (
	errCodeBadMessage     = 1
	errCodeUnknownMessage = 2
	errCodeBadPayload     = 3
)

var (
	// ErrBadMessage means the control message body could not be parsed.
	ErrBadMessage = errcode.New(
		errcode.ModuleAgent, errCodeBadMessage,
		"agent", "malformed control message",
		http.StatusBadRequest,
	)

	// ErrUnknownMessage means the control message type is not one of
	// FORCE_ACTIVATE, PRELOAD_MEDIA, PURGE_ALL.
	ErrUnknownMessage = errcode.New(
		errcode.ModuleAgent, errCodeUnknownMessage,
		"agent", "unknown control message type",
		http.StatusBadRequest,
	)

	// ErrBadPayload means a request body could not be read or decoded.
	ErrBadPayload = errcode.New(
		errcode.ModuleAgent, errCodeBadPayload,
		"agent", "malformed request payload",
		http.StatusBadRequest,
	)
)
