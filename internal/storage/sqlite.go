package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/alienxp03/panelist/internal/core"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &SQLiteStorage{
		db:   db,
		path: dbPath,
	}, nil
}

// Initialize creates the database schema.
func (s *SQLiteStorage) Initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		title TEXT,
		type TEXT NOT NULL,
		topic TEXT NOT NULL,
		goals_json TEXT,
		participants_json TEXT NOT NULL,
		rounds INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		summary TEXT,
		metrics_json TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		completed_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		persona_id TEXT,
		persona_name TEXT NOT NULL,
		avatar TEXT,
		content TEXT NOT NULL,
		sentiment TEXT NOT NULL,
		sentiment_score REAL NOT NULL,
		round INTEGER NOT NULL,
		fallback INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS personas (
		id TEXT PRIMARY KEY,
		profile_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_session_id ON messages(session_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
	CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// CreateSession creates a new session record.
func (s *SQLiteStorage) CreateSession(session *core.Session) error {
	goalsJSON, participantsJSON, metricsJSON, err := marshalSessionColumns(session)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO sessions (id, title, type, topic, goals_json, participants_json, rounds, status, summary, metrics_json, created_at, updated_at, completed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query,
		session.ID,
		session.Title,
		session.Type,
		session.Topic,
		goalsJSON,
		participantsJSON,
		session.Rounds,
		session.Status,
		session.Summary,
		metricsJSON,
		session.CreatedAt,
		session.UpdatedAt,
		session.CompletedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID. A missing session returns nil
// without an error.
func (s *SQLiteStorage) GetSession(id string) (*core.Session, error) {
	query := `
	SELECT id, title, type, topic, goals_json, participants_json, rounds, status, summary, metrics_json, created_at, updated_at, completed_at
	FROM sessions
	WHERE id = ?
	`

	var session core.Session
	var goalsJSON, metricsJSON, summary, title sql.NullString
	var participantsJSON string
	var completedAt sql.NullTime

	err := s.db.QueryRow(query, id).Scan(
		&session.ID,
		&title,
		&session.Type,
		&session.Topic,
		&goalsJSON,
		&participantsJSON,
		&session.Rounds,
		&session.Status,
		&summary,
		&metricsJSON,
		&session.CreatedAt,
		&session.UpdatedAt,
		&completedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	session.Title = title.String
	session.Summary = summary.String

	if goalsJSON.Valid && goalsJSON.String != "" {
		if err := json.Unmarshal([]byte(goalsJSON.String), &session.Goals); err != nil {
			return nil, fmt.Errorf("failed to unmarshal goals: %w", err)
		}
	}

	if err := json.Unmarshal([]byte(participantsJSON), &session.ParticipantIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal participants: %w", err)
	}

	if metricsJSON.Valid && metricsJSON.String != "" {
		var metrics core.Metrics
		if err := json.Unmarshal([]byte(metricsJSON.String), &metrics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
		}
		session.Metrics = &metrics
	}

	if completedAt.Valid {
		session.CompletedAt = &completedAt.Time
	}

	return &session, nil
}

// UpdateSession updates an existing session record.
func (s *SQLiteStorage) UpdateSession(session *core.Session) error {
	goalsJSON, participantsJSON, metricsJSON, err := marshalSessionColumns(session)
	if err != nil {
		return err
	}

	session.UpdatedAt = time.Now()

	query := `
	UPDATE sessions
	SET title = ?, type = ?, topic = ?, goals_json = ?, participants_json = ?, rounds = ?, status = ?, summary = ?, metrics_json = ?, updated_at = ?, completed_at = ?
	WHERE id = ?
	`

	_, err = s.db.Exec(query,
		session.Title,
		session.Type,
		session.Topic,
		goalsJSON,
		participantsJSON,
		session.Rounds,
		session.Status,
		session.Summary,
		metricsJSON,
		session.UpdatedAt,
		session.CompletedAt,
		session.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

// DeleteSession deletes a session and its messages.
func (s *SQLiteStorage) DeleteSession(id string) error {
	_, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListSessions returns a list of session summaries, newest first.
func (s *SQLiteStorage) ListSessions(limit, offset int) ([]*core.SessionSummary, error) {
	query := `
	SELECT s.id, s.title, s.topic, s.type, s.status, s.participants_json, s.created_at,
		   (SELECT COUNT(*) FROM messages WHERE session_id = s.id) as message_count
	FROM sessions s
	ORDER BY s.created_at DESC
	LIMIT ? OFFSET ?
	`

	rows, err := s.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var summaries []*core.SessionSummary
	for rows.Next() {
		var summary core.SessionSummary
		var title sql.NullString
		var participantsJSON string

		err := rows.Scan(
			&summary.ID,
			&title,
			&summary.Topic,
			&summary.Type,
			&summary.Status,
			&participantsJSON,
			&summary.CreatedAt,
			&summary.MessageCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session summary: %w", err)
		}

		summary.Title = title.String

		var participants []string
		json.Unmarshal([]byte(participantsJSON), &participants)
		summary.ParticipantCount = len(participants)

		summaries = append(summaries, &summary)
	}

	return summaries, rows.Err()
}

// AddMessage appends a message to a session.
func (s *SQLiteStorage) AddMessage(msg *core.Message) error {
	query := `
	INSERT INTO messages (id, session_id, persona_id, persona_name, avatar, content, sentiment, sentiment_score, round, fallback, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		msg.ID,
		msg.SessionID,
		msg.PersonaID,
		msg.PersonaName,
		msg.Avatar,
		msg.Content,
		msg.Sentiment,
		msg.SentimentScore,
		msg.Round,
		msg.Fallback,
		msg.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	return nil
}

// GetMessages returns all messages for a session in insertion order.
func (s *SQLiteStorage) GetMessages(sessionID string) ([]*core.Message, error) {
	query := `
	SELECT id, session_id, persona_id, persona_name, avatar, content, sentiment, sentiment_score, round, fallback, created_at
	FROM messages
	WHERE session_id = ?
	ORDER BY rowid ASC
	`

	rows, err := s.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer rows.Close()

	var messages []*core.Message
	for rows.Next() {
		var msg core.Message
		var personaID, avatar sql.NullString

		err := rows.Scan(
			&msg.ID,
			&msg.SessionID,
			&personaID,
			&msg.PersonaName,
			&avatar,
			&msg.Content,
			&msg.Sentiment,
			&msg.SentimentScore,
			&msg.Round,
			&msg.Fallback,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		msg.PersonaID = personaID.String
		msg.Avatar = avatar.String
		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}

// SavePersona inserts or replaces a custom persona profile.
func (s *SQLiteStorage) SavePersona(profile *core.PersonaProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal persona: %w", err)
	}

	query := `INSERT OR REPLACE INTO personas (id, profile_json) VALUES (?, ?)`
	if _, err := s.db.Exec(query, profile.ID, string(data)); err != nil {
		return fmt.Errorf("failed to save persona: %w", err)
	}
	return nil
}

// GetPersona retrieves a stored persona by ID. A missing persona returns
// nil without an error.
func (s *SQLiteStorage) GetPersona(id string) (*core.PersonaProfile, error) {
	var data string
	err := s.db.QueryRow("SELECT profile_json FROM personas WHERE id = ?", id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get persona: %w", err)
	}

	var profile core.PersonaProfile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal persona: %w", err)
	}
	return &profile, nil
}

// ListPersonas returns all stored persona profiles.
func (s *SQLiteStorage) ListPersonas() ([]*core.PersonaProfile, error) {
	rows, err := s.db.Query("SELECT profile_json FROM personas ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list personas: %w", err)
	}
	defer rows.Close()

	var profiles []*core.PersonaProfile
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan persona: %w", err)
		}

		var profile core.PersonaProfile
		if err := json.Unmarshal([]byte(data), &profile); err != nil {
			return nil, fmt.Errorf("failed to unmarshal persona: %w", err)
		}
		profiles = append(profiles, &profile)
	}

	return profiles, rows.Err()
}

// DeletePersona removes a stored persona.
func (s *SQLiteStorage) DeletePersona(id string) error {
	if _, err := s.db.Exec("DELETE FROM personas WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete persona: %w", err)
	}
	return nil
}

func marshalSessionColumns(session *core.Session) (goals string, participants string, metrics *string, err error) {
	if len(session.Goals) > 0 {
		data, mErr := json.Marshal(session.Goals)
		if mErr != nil {
			return "", "", nil, fmt.Errorf("failed to marshal goals: %w", mErr)
		}
		goals = string(data)
	}

	data, mErr := json.Marshal(session.ParticipantIDs)
	if mErr != nil {
		return "", "", nil, fmt.Errorf("failed to marshal participants: %w", mErr)
	}
	participants = string(data)

	if session.Metrics != nil {
		data, mErr := json.Marshal(session.Metrics)
		if mErr != nil {
			return "", "", nil, fmt.Errorf("failed to marshal metrics: %w", mErr)
		}
		str := string(data)
		metrics = &str
	}

	return goals, participants, metrics, nil
}
