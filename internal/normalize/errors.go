package normalize

import (
	"fmt"
)

// ParseError is returned when backend output cannot be parsed as JSON even
// after the repair passes. It retains the offending raw text for diagnostics.
type ParseError struct {
	// RawText is the backend output that failed to parse.
	RawText string

	// Err is the final JSON decode error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("normalize: backend output is not valid JSON: %v (raw: %s)", e.Err, truncate(e.RawText, 256))
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError is returned when backend output parses as JSON but does not
// fit the canonical invoice schema (e.g. a string where a number belongs).
type ValidationError struct {
	// RawText is the parsed-but-unmappable backend output.
	RawText string

	// Err is the underlying decode error.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("normalize: backend output does not fit the invoice schema: %v (raw: %s)", e.Err, truncate(e.RawText, 256))
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
