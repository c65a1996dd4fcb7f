// Package gatewayerrors provides structured internal errors that keep the
// originating component and call visible in logs without leaking stack traces
// to clients.
package gatewayerrors

import "fmt"

// InternalError -.
type InternalError struct {
	Component     string
	Function      string
	Call          string
	Message       string
	OriginalError error
}

// CreateError builds the base error for a component; usecases wrap it per
// failing call.
func CreateError(component string) InternalError {
	return InternalError{Component: component}
}

// Error -.
func (e InternalError) Error() string {
	if e.OriginalError == nil {
		if e.Message != "" {
			return fmt.Sprintf("%s: %s", e.Component, e.Message)
		}

		return e.Component
	}

	return fmt.Sprintf("%s - %s - %s: %s", e.Component, e.Function, e.Call, e.OriginalError)
}

// Wrap attaches the failing function and call site to a copy of the error.
func (e InternalError) Wrap(function, call string, err error) InternalError {
	e.Function = function
	e.Call = call
	e.OriginalError = err

	return e
}

// Unwrap -.
func (e InternalError) Unwrap() error {
	return e.OriginalError
}

// Is matches any InternalError from the same component, so sentinel
// comparisons survive Wrap.
func (e InternalError) Is(target error) bool {
	other, ok := target.(InternalError)
	if !ok {
		return false
	}

	return e.Component == other.Component
}
