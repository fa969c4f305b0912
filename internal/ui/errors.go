package ui

import (
	"errors"

	"github.com/nanoreddit-ui-autotests/internal/poll"
)

// AssertionError is returned when a component expectation did not hold
// within the view timeout
type AssertionError struct {
	Component string
	Locator   string
	Message   string
	cause     error
}

func (e *AssertionError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying *poll.TimeoutError
func (e *AssertionError) Unwrap() error {
	return e.cause
}

func isTimeout(err error) bool {
	var timeoutErr *poll.TimeoutError
	return errors.As(err, &timeoutErr)
}
