package llm

import (
	"errors"
	"fmt"
)

// Common LLM errors
var (
	// ErrMissingCredentials is returned when the provider's endpoint or API
	// key is not configured.
	ErrMissingCredentials = errors.New("missing LLM provider credentials")

	// ErrNoChoices is returned when the completion response carries no choices.
	ErrNoChoices = errors.New("no response choices from model")

	// ErrEmptyResponse is returned when the model replies with empty content.
	ErrEmptyResponse = errors.New("model returned empty content")

	// ErrRequestFailed is returned when the completion call itself fails.
	ErrRequestFailed = errors.New("completion request failed")
)

// LLMError wraps errors with context about a model invocation failure.
type LLMError struct {
	// Op is the operation that failed (e.g., "ExtractStructured").
	Op string

	// Model is the deployment or model ID that was invoked.
	Model string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *LLMError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("llm: %s failed (model: %s): %s: %v", e.Op, e.Model, e.Details, e.Err)
	}
	return fmt.Sprintf("llm: %s failed (model: %s): %v", e.Op, e.Model, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *LLMError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *LLMError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapLLMError wraps an error as an LLMError if it isn't already one.
func WrapLLMError(op, model string, err error, details string) error {
	if err == nil {
		return nil
	}

	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return err // Already wrapped
	}

	return &LLMError{Op: op, Model: model, Err: err, Details: details}
}
