package retry

import (
	"fmt"
	"strings"
)

// MultiError aggregates the error of every failed attempt.
type MultiError struct {
	Errors   []error
	Attempts int
}

// Error returns the last attempt's error message.
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "retry failed: no errors"
	}
	return e.Errors[len(e.Errors)-1].Error()
}

// Unwrap exposes the last error for errors.Is / errors.As.
func (e *MultiError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}

// AllErrors renders every attempt's error, one per line.
func (e *MultiError) AllErrors() string {
	if len(e.Errors) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("retry failed after %d attempts:", e.Attempts))
	for i, err := range e.Errors {
		b.WriteString(fmt.Sprintf("\n  attempt %d: %v", i+1, err))
	}
	return b.String()
}
