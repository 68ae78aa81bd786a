package extract

import (
	"errors"
	"fmt"
)

// Common extraction errors.
var (
	// ErrUnknownMethod indicates a method identifier outside the registry.
	ErrUnknownMethod = errors.New("unknown extraction method")

	// ErrEmptyResponse indicates a backend returned no usable payload.
	ErrEmptyResponse = errors.New("backend returned an empty response")
)

// BackendError wraps a failure inside one method's pipeline with the method
// identity attached, so callers can report which pipeline failed without
// parsing message text.
type BackendError struct {
	// Method is the pipeline that failed.
	Method Method

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("extract %s: %v (%s)", e.Method, e.Err, e.Details)
	}
	return fmt.Sprintf("extract %s: %v", e.Method, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors.
func (e *BackendError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapBackendError creates a BackendError with the given context.
func WrapBackendError(method Method, err error, details string) *BackendError {
	return &BackendError{
		Method:  method,
		Err:     err,
		Details: details,
	}
}
