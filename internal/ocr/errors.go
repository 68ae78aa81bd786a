package ocr

import (
	"errors"
	"fmt"
)

// Common OCR processing errors
var (
	// ErrImageTooLarge is returned when the image exceeds the provider's
	// synchronous processing limit.
	ErrImageTooLarge = errors.New("image size exceeds the maximum limit")

	// ErrInvalidImage is returned when the provided data is not a readable image.
	ErrInvalidImage = errors.New("invalid or corrupted image")

	// ErrOCRFailed is returned when the text-detection call fails.
	ErrOCRFailed = errors.New("OCR processing failed")

	// ErrEmptyDocument is returned when the image contains no readable text.
	ErrEmptyDocument = errors.New("document contains no readable text")

	// ErrMissingCredentials is returned when the OCR provider's credentials
	// are not configured in the environment.
	ErrMissingCredentials = errors.New("missing OCR provider credentials")
)

// OCRError wraps errors with additional context about the OCR processing failure.
type OCRError struct {
	// Op is the operation that failed (e.g., "DetectText").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *OCRError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *OCRError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *OCRError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapOCRError wraps an error as an OCRError if it isn't already one.
func WrapOCRError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return err // Already wrapped
	}

	return &OCRError{Op: op, Err: err, Details: details}
}
