// Package storage provides persistence for simulation sessions.
package storage

import (
	"github.com/alienxp03/panelist/internal/core"
)

// Storage defines the interface for session persistence. The engine treats
// it as a write-mostly sink: sessions and messages are appended as they
// happen, reads serve the CLI and HTTP listing surfaces.
type Storage interface {
	// Initialize sets up the storage (creates tables, etc.)
	Initialize() error

	// Close closes the storage connection.
	Close() error

	// Session operations
	CreateSession(session *core.Session) error
	GetSession(id string) (*core.Session, error)
	UpdateSession(session *core.Session) error
	DeleteSession(id string) error
	ListSessions(limit, offset int) ([]*core.SessionSummary, error)

	// Message operations
	AddMessage(msg *core.Message) error
	GetMessages(sessionID string) ([]*core.Message, error)

	// Custom persona operations
	SavePersona(profile *core.PersonaProfile) error
	GetPersona(id string) (*core.PersonaProfile, error)
	ListPersonas() ([]*core.PersonaProfile, error)
	DeletePersona(id string) error
}
