package policy

import (
	"net/http"

	"github.com/AliGym19/voiceverse-sub001/errcode"
)

const (
	errCodeEngineUnconfigured = 1
	errCodePreloadFailed      = 2
)

var (
	// ErrEngineUnconfigured means the engine is missing its fetcher or
	// store manager. Programmer error, not a runtime condition.
	ErrEngineUnconfigured = errcode.New(
		errcode.ModulePolicy, errCodeEngineUnconfigured,
		"policy", "engine not configured",
		http.StatusInternalServerError,
	)

	// ErrPreloadFailed reports an unsuccessful proactive media fetch.
	ErrPreloadFailed = errcode.New(
		errcode.ModulePolicy, errCodePreloadFailed,
		"policy", "media preload failed",
		http.StatusBadGateway,
	)
)
