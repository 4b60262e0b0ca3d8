package session

import "fmt"

// ConfigurationError rejects a session spec before any external call is
// made: unknown personas, empty participant sets, bad round counts.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid session configuration: %s", e.Reason)
}

// ErrSessionNotFound is returned for operations on unknown session ids.
type ErrSessionNotFound struct {
	ID string
}

func (e *ErrSessionNotFound) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}
