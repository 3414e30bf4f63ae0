package queue

import (
	"net/http"

	"github.com/AliGym19/voiceverse-sub001/errcode"
)

const (
	errCodeQueueFull    = 1
	errCodeNotFound     = 2
	errCodePersistence  = 3
	errCodeNotFailed    = 4
	errCodeDrainRunning = 5
)

var (
	// ErrQueueFull rejects enqueues past the configured cap.
	ErrQueueFull = errcode.New(
		errcode.ModuleQueue, errCodeQueueFull,
		"queue", "offline queue is full",
		http.StatusTooManyRequests,
	)

	// ErrNotFound means no mutation has the given id.
	ErrNotFound = errcode.New(
		errcode.ModuleQueue, errCodeNotFound,
		"queue", "mutation not found",
		http.StatusNotFound,
	)

	// ErrPersistence wraps storage failures.
	ErrPersistence = errcode.New(
		errcode.ModuleQueue, errCodePersistence,
		"queue", "queue persistence failure",
		http.StatusInternalServerError,
	)

	// ErrNotFailed rejects manual retries of entries that are not in the
	// failed state.
	ErrNotFailed = errcode.New(
		errcode.ModuleQueue, errCodeNotFailed,
		"queue", "mutation is not in failed state",
		http.StatusConflict,
	)

	// ErrDrainRunning means a drain pass is already in progress.
	ErrDrainRunning = errcode.New(
		errcode.ModuleQueue, errCodeDrainRunning,
		"queue", "drain already in progress",
		http.StatusConflict,
	)
)
