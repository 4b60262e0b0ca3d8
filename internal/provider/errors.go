package provider

import "fmt"

// GenerationError represents a failed generation call: backend error,
// timeout, or malformed output. The orchestrator treats it as recoverable
// per turn.
type GenerationError struct {
	Provider string
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s generation error: %s (%v)", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s generation error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Err
}
