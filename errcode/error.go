// Package errcode provides layered error codes for the offline agent.
// Code format: MMBBBB (MM = module code, BBBB = business code).
package errcode

import (
	"fmt"
	"net/http"
)

// Module codes. Each package owns one block of codes.
const (
	ModuleCommon       = 10
	ModuleCacheStore   = 20
	ModuleClassify     = 25
	ModulePolicy       = 30
	ModuleLifecycle    = 40
	ModuleQueue        = 50
	ModuleConnectivity = 55
	ModuleRelay        = 60
	ModuleFetch        = 65
	ModuleConfig       = 70
	ModuleAgent        = 80
)

// LayeredError is an error carrying a stable numeric code, the owning
// module name, an HTTP status mapping, optional context data and an
// optional wrapped cause.
type LayeredError struct {
	module     string
	code       int
	msg        string
	httpStatus int
	data       map[string]interface{}
	cause      error
}

// New creates a layered error. moduleCode and businessCode form the full
// code as moduleCode*10000 + businessCode.
func New(moduleCode, businessCode int, module, msg string, httpStatus ...int) *LayeredError {
	status := http.StatusOK
	if len(httpStatus) > 0 {
		status = httpStatus[0]
	}
	return &LayeredError{
		module:     module,
		code:       moduleCode*10000 + businessCode,
		msg:        msg,
		httpStatus: status,
		data:       make(map[string]interface{}),
	}
}

func (e *LayeredError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Code returns the full numeric code.
func (e *LayeredError) Code() int { return e.code }

// Module returns the owning module name.
func (e *LayeredError) Module() string { return e.module }

// Message returns the message without the cause chain.
func (e *LayeredError) Message() string { return e.msg }

// HTTPStatus returns the HTTP status this error maps to.
func (e *LayeredError) HTTPStatus() int { return e.httpStatus }

// Data returns the attached context data.
func (e *LayeredError) Data() map[string]interface{} { return e.data }

// Unwrap supports errors.Is / errors.As chains.
func (e *LayeredError) Unwrap() error { return e.cause }

// Is matches by code so sentinel errors survive Wrap.
func (e *LayeredError) Is(target error) bool {
	t, ok := target.(*LayeredError)
	if !ok {
		return false
	}
	return e.code == t.code
}

// WithMsg returns a copy with the message replaced.
func (e *LayeredError) WithMsg(msg string) *LayeredError {
	clone := *e
	clone.msg = msg
	return &clone
}

// WithMsgf returns a copy with a formatted message.
func (e *LayeredError) WithMsgf(format string, args ...interface{}) *LayeredError {
	clone := *e
	clone.msg = fmt.Sprintf(format, args...)
	return &clone
}

// WithData returns a copy with one context value added.
func (e *LayeredError) WithData(key string, value interface{}) *LayeredError {
	clone := *e
	clone.data = e.cloneData()
	clone.data[key] = value
	return &clone
}

// Wrap returns a copy with the cause attached.
func (e *LayeredError) Wrap(cause error) *LayeredError {
	if cause == nil {
		return e
	}
	clone := *e
	clone.cause = cause
	return &clone
}

// Wrapf wraps the cause and replaces the message.
func (e *LayeredError) Wrapf(cause error, format string, args ...interface{}) *LayeredError {
	if cause == nil {
		return e.WithMsgf(format, args...)
	}
	clone := *e
	clone.cause = cause
	clone.msg = fmt.Sprintf(format, args...)
	return &clone
}

func (e *LayeredError) cloneData() map[string]interface{} {
	data := make(map[string]interface{}, len(e.data))
	for k, v := range e.data {
		data[k] = v
	}
	return data
}
