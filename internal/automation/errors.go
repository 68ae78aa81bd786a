package automation

import (
	"errors"
	"fmt"
)

// Common automation errors
var (
	// ErrJobFailed is returned when a job reaches a terminal status other
	// than Success.
	ErrJobFailed = errors.New("data automation job failed")

	// ErrPollTimeout is returned when the job does not reach a terminal
	// status within the configured attempt budget.
	ErrPollTimeout = errors.New("data automation job polling timed out")

	// ErrInvalidConfiguration is returned when the automation configuration
	// is incomplete.
	ErrInvalidConfiguration = errors.New("invalid data automation configuration")

	// ErrMalformedResult is returned when the job result metadata does not
	// carry the expected structure.
	ErrMalformedResult = errors.New("malformed data automation result")
)

// AutomationError wraps errors with context about an automation job failure.
type AutomationError struct {
	// Op is the operation that failed (e.g., "ProcessDocument", "poll").
	Op string

	// Err is the underlying error.
	Err error

	// Status is the job's last reported status, if known.
	Status string

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *AutomationError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("automation: %s failed (status: %s): %v", e.Op, e.Status, e.Err)
	}
	if e.Details != "" {
		return fmt.Sprintf("automation: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("automation: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *AutomationError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *AutomationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapAutomationError wraps an error as an AutomationError if it isn't already one.
func WrapAutomationError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var autoErr *AutomationError
	if errors.As(err, &autoErr) {
		return err // Already wrapped
	}

	return &AutomationError{Op: op, Err: err, Details: details}
}
