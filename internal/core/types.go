// Package core contains the core domain types for panelist.
package core

import (
	"time"
)

// SessionType distinguishes one-on-one interviews from multi-party focus groups.
type SessionType string

const (
	TypeInterview  SessionType = "interview"
	TypeFocusGroup SessionType = "focus_group"
)

// SessionStatus represents the current status of a session.
type SessionStatus string

const (
	StatusPending    SessionStatus = "pending"
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusAborted    SessionStatus = "aborted"
	StatusFailed     SessionStatus = "failed"
)

// SentimentLabel is the thresholded class of a sentiment score.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// Round numbering: 0 is the initial-reaction phase, 1..N are discussion
// rounds, RoundSynthesis marks synthesis/meta entries that sort after
// every numbered round.
const RoundSynthesis = -1

// PersonaProfile describes one simulated participant. Profiles are loaded
// once at startup and never mutated; sessions share them read-only.
type PersonaProfile struct {
	ID                   string  `json:"id" yaml:"id"`
	DisplayName          string  `json:"display_name" yaml:"display_name"`
	Avatar               string  `json:"avatar" yaml:"avatar"`
	Role                 string  `json:"role" yaml:"role"`
	Goal                 string  `json:"goal" yaml:"goal"`
	Backstory            string  `json:"backstory" yaml:"backstory"`
	SentimentBias        float64 `json:"sentiment_bias" yaml:"sentiment_bias"`               // -1.0 to 1.0
	EngagementLevel      float64 `json:"engagement_level" yaml:"engagement_level"`           // 0.0 to 1.0
	ControversyTolerance float64 `json:"controversy_tolerance" yaml:"controversy_tolerance"` // 0.0 to 1.0
	Builtin              bool    `json:"builtin,omitempty" yaml:"-"`
}

// Message is a single utterance in a session transcript.
// PersonaID is empty for user/moderator messages.
type Message struct {
	ID             string         `json:"id"`
	SessionID      string         `json:"session_id"`
	PersonaID      string         `json:"persona_id,omitempty"`
	PersonaName    string         `json:"persona_name"`
	Avatar         string         `json:"avatar,omitempty"`
	Content        string         `json:"content"`
	Sentiment      SentimentLabel `json:"sentiment"`
	SentimentScore float64        `json:"sentiment_score"`
	Round          int            `json:"round"`
	Fallback       bool           `json:"fallback,omitempty"` // substituted after generation failed
	CreatedAt      time.Time      `json:"created_at"`
}

// FromPersona reports whether the message was produced by a persona agent,
// as opposed to a user or moderator.
func (m *Message) FromPersona() bool {
	return m.PersonaID != ""
}

// SessionSpec is the immutable request to run a session. ParticipantIDs
// fixes the speaking order for every phase.
type SessionSpec struct {
	ID             string      `json:"id"`
	Type           SessionType `json:"type"`
	Topic          string      `json:"topic"` // campaign description or interview topic
	Goals          []string    `json:"goals,omitempty"`
	ParticipantIDs []string    `json:"participant_ids"`
	Rounds         int         `json:"rounds"` // discussion rounds after the initial reaction
}

// Session is the persisted envelope of a running or finished session.
type Session struct {
	ID             string         `json:"id"`
	Title          string         `json:"title,omitempty"`
	Type           SessionType    `json:"type"`
	Topic          string         `json:"topic"`
	Goals          []string       `json:"goals,omitempty"`
	ParticipantIDs []string       `json:"participant_ids"`
	Rounds         int            `json:"rounds"`
	Status         SessionStatus  `json:"status"`
	Summary        string         `json:"summary,omitempty"`
	Metrics        *Metrics       `json:"metrics,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
}

// SessionSummary is a lightweight representation for listing sessions.
type SessionSummary struct {
	ID               string        `json:"id"`
	Title            string        `json:"title,omitempty"`
	Topic            string        `json:"topic"`
	Type             SessionType   `json:"type"`
	Status           SessionStatus `json:"status"`
	ParticipantCount int           `json:"participant_count"`
	MessageCount     int           `json:"message_count"`
	CreatedAt        time.Time     `json:"created_at"`
}

// PhaseResult is the newly produced output of one completed phase. It is
// what the resumable coordinator hands back after each Start/Advance call
// so callers can render sessions incrementally.
type PhaseResult struct {
	SessionID string    `json:"session_id"`
	Round     int       `json:"round"`
	Phase     string    `json:"phase"` // initial_reaction, discussion, synthesis
	Messages  []Message `json:"messages"`
	Summary   string    `json:"summary,omitempty"` // set by the synthesis phase
	Done      bool      `json:"done"`
}

// SessionResult is the final outcome of a session: the full transcript
// plus aggregated metrics. A session ended early still yields a valid
// result over whatever completed.
type SessionResult struct {
	SessionID       string        `json:"session_id"`
	Spec            SessionSpec   `json:"spec"`
	Status          SessionStatus `json:"status"`
	Transcript      []Message     `json:"transcript"`
	Metrics         Metrics       `json:"metrics"`
	Summary         string        `json:"summary,omitempty"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
	DurationSeconds float64       `json:"duration_seconds"`
}

// SentimentDistribution counts messages per sentiment class.
type SentimentDistribution struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// SentimentInterval captures overall and per-persona sentiment for one
// completed phase, for sentiment-over-time plotting.
type SentimentInterval struct {
	Round             int                `json:"round"`
	OverallSentiment  float64            `json:"overall_sentiment"`
	PersonaSentiments map[string]float64 `json:"persona_sentiments"`
	Timestamp         time.Time          `json:"timestamp"`
}

// Metrics is the aggregated analytics over a transcript.
type Metrics struct {
	TotalMessages    int                   `json:"total_messages"`
	Distribution     SentimentDistribution `json:"sentiment_distribution"`
	AverageSentiment float64               `json:"average_sentiment"`
	NPS              float64               `json:"nps"`
	CSAT             float64               `json:"csat"`
	SentimentShift   float64               `json:"sentiment_shift"`
	Intervals        []SentimentInterval   `json:"sentiment_intervals,omitempty"`
	Insights         []string              `json:"insights,omitempty"`
	Recommendations  []string              `json:"recommendations,omitempty"`
}
