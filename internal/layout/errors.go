package layout

import (
	"errors"
	"fmt"
)

// Common layout analysis errors
var (
	// ErrAnalysisFailed is returned when the Document AI layout processor fails.
	ErrAnalysisFailed = errors.New("layout analysis failed")

	// ErrEmptyContent is returned when the processor yields no text content.
	ErrEmptyContent = errors.New("layout analysis produced no content")

	// ErrMissingCredentials is returned when Google Cloud credentials are not configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrInvalidConfiguration is returned when the layout processor configuration is invalid.
	ErrInvalidConfiguration = errors.New("invalid layout processor configuration")

	// ErrDocumentTooLarge is returned when the document exceeds size limits.
	ErrDocumentTooLarge = errors.New("document exceeds maximum size limit")
)

// LayoutError wraps errors with context about a layout analysis failure.
type LayoutError struct {
	// Op is the operation that failed (e.g., "AnalyzeLayout").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *LayoutError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("layout: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("layout: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *LayoutError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *LayoutError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapLayoutError wraps an error as a LayoutError if it isn't already one.
func WrapLayoutError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var layoutErr *LayoutError
	if errors.As(err, &layoutErr) {
		return err // Already wrapped
	}

	return &LayoutError{Op: op, Err: err, Details: details}
}
