package lifecycle

import (
	"net/http"

	"github.com/AliGym19/voiceverse-sub001/errcode"
)

const (
	errCodeInvalidTransition = 1
	errCodeInstall           = 2
	errCodeActivate          = 3
)

var (
	// ErrInvalidTransition means the requested transition is not legal
	// from the current state.
	ErrInvalidTransition = errcode.New(
		errcode.ModuleLifecycle, errCodeInvalidTransition,
		"lifecycle", "invalid lifecycle transition",
		http.StatusConflict,
	)

	// ErrInstall means the manifest could not be fully pre-populated.
	// The partially built generation is discarded.
	ErrInstall = errcode.New(
		errcode.ModuleLifecycle, errCodeInstall,
		"lifecycle", "install failed",
		http.StatusBadGateway,
	)

	// ErrActivate means superseded generation cleanup failed.
	ErrActivate = errcode.New(
		errcode.ModuleLifecycle, errCodeActivate,
		"lifecycle", "activation failed",
		http.StatusInternalServerError,
	)
)
