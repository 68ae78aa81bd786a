package preparer

import (
	"errors"
	"fmt"
)

// Common document preparation errors
var (
	// ErrNoPages is returned when rasterization yields zero page images.
	ErrNoPages = errors.New("rasterization produced no pages")

	// ErrUnsupportedFormat is returned for input files that are neither PDFs
	// nor supported image formats.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrFileNotFound is returned when the input document does not exist.
	ErrFileNotFound = errors.New("document file not found")
)

// ConversionError wraps errors with context about a failed document conversion.
type ConversionError struct {
	// Op is the operation that failed (e.g., "Prepare", "rasterize").
	Op string

	// Path is the document that was being converted.
	Path string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("preparer: %s failed for %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("preparer: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ConversionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapConversionError wraps an error as a ConversionError if it isn't already one.
func WrapConversionError(op, path string, err error) error {
	if err == nil {
		return nil
	}

	var convErr *ConversionError
	if errors.As(err, &convErr) {
		return err // Already wrapped
	}

	return &ConversionError{Op: op, Path: path, Err: err}
}
