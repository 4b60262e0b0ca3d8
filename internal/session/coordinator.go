// Package session orchestrates multi-persona simulation sessions. It holds
// the phase state machine, turn execution, and the coordinator surface that
// callers drive sessions through.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alienxp03/panelist/internal/agent"
	"github.com/alienxp03/panelist/internal/core"
	"github.com/alienxp03/panelist/internal/metrics"
	"github.com/alienxp03/panelist/internal/persona"
	"github.com/alienxp03/panelist/internal/prompt"
	"github.com/alienxp03/panelist/internal/provider"
	"github.com/alienxp03/panelist/internal/storage"
)

// Focus groups default to three discussion rounds when the spec leaves the
// count unset.
const defaultFocusGroupRounds = 3

// Focus groups carry 2 to 20 participants; interviews exactly one.
const maxFocusGroupParticipants = 20

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithStorage attaches a persistence sink. Without one, sessions live only
// in memory.
func WithStorage(store storage.Storage) Option {
	return func(c *Coordinator) { c.store = store }
}

// WithPacing inserts a presentation delay between phases in Run. The state
// machine itself never sleeps; Start/Advance are always immediate.
func WithPacing(d time.Duration) Option {
	return func(c *Coordinator) { c.pacing = d }
}

// WithTemplates overrides the default phase prompt templates.
func WithTemplates(set prompt.Set) Option {
	return func(c *Coordinator) { c.templates = set }
}

// run is one active session's in-memory state. Its mutex serializes the
// caller-facing operations on that session, so concurrent Advance or End
// calls on the same ID execute one phase at a time while distinct sessions
// proceed independently.
type run struct {
	mu    sync.Mutex
	orch  *orchestrator
	start time.Time
}

// Coordinator is the top-level entry point. It validates specs, owns each
// active session's orchestrator and transcript, and exposes both the
// fire-and-forget Run and the resumable Start/Advance/End surface used by
// interactive callers.
type Coordinator struct {
	registry  *persona.Registry
	generator provider.Generator
	templates prompt.Set
	store     storage.Storage
	pacing    time.Duration

	mu     sync.Mutex
	active map[string]*run
}

// New creates a coordinator over a read-only persona registry and a
// generation backend.
func New(registry *persona.Registry, generator provider.Generator, opts ...Option) *Coordinator {
	c := &Coordinator{
		registry:  registry,
		generator: generator,
		templates: prompt.DefaultSet(),
		active:    make(map[string]*run),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// validate resolves the spec's participants against the registry and
// rejects bad configurations before any external call is made.
func (c *Coordinator) validate(spec *core.SessionSpec) ([]core.PersonaProfile, error) {
	if spec.Topic == "" {
		return nil, &ConfigurationError{Reason: "topic is required"}
	}
	if len(spec.ParticipantIDs) == 0 {
		return nil, &ConfigurationError{Reason: "participant set is empty"}
	}
	if spec.Rounds < 0 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("round count %d is negative", spec.Rounds)}
	}

	switch spec.Type {
	case core.TypeInterview:
		if len(spec.ParticipantIDs) != 1 {
			return nil, &ConfigurationError{Reason: "interview sessions take exactly one participant"}
		}
	case core.TypeFocusGroup:
		if len(spec.ParticipantIDs) < 2 || len(spec.ParticipantIDs) > maxFocusGroupParticipants {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("focus groups take 2-%d participants, got %d", maxFocusGroupParticipants, len(spec.ParticipantIDs))}
		}
	default:
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown session type: %s", spec.Type)}
	}

	seen := make(map[string]struct{}, len(spec.ParticipantIDs))
	profiles := make([]core.PersonaProfile, 0, len(spec.ParticipantIDs))
	for _, id := range spec.ParticipantIDs {
		if _, dup := seen[id]; dup {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("duplicate participant: %s", id)}
		}
		seen[id] = struct{}{}

		p, err := c.registry.Get(id)
		if err != nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown persona: %s", id)}
		}
		profiles = append(profiles, p)
	}

	return profiles, nil
}

// Validate checks a spec against the registry without starting anything.
func (c *Coordinator) Validate(spec core.SessionSpec) error {
	if spec.Type == core.TypeFocusGroup && spec.Rounds == 0 {
		spec.Rounds = defaultFocusGroupRounds
	}
	_, err := c.validate(&spec)
	return err
}

// Start validates the spec, registers the session, and executes its
// initial-reaction phase. The returned PhaseResult carries that phase's
// messages for immediate rendering.
func (c *Coordinator) Start(ctx context.Context, spec core.SessionSpec) (*core.PhaseResult, error) {
	if spec.ID == "" {
		spec.ID = core.GenerateID()
	}
	if spec.Type == core.TypeFocusGroup && spec.Rounds == 0 {
		spec.Rounds = defaultFocusGroupRounds
	}

	profiles, err := c.validate(&spec)
	if err != nil {
		return nil, err
	}

	slog.Info("Starting session", "id", spec.ID, "type", spec.Type,
		"participants", len(profiles), "rounds", spec.Rounds)

	ag := agent.New(c.generator, c.templates)
	r := &run{
		orch:  newOrchestrator(spec, profiles, ag, c.generator, c.templates),
		start: time.Now(),
	}

	c.mu.Lock()
	if _, exists := c.active[spec.ID]; exists {
		c.mu.Unlock()
		return nil, &ConfigurationError{Reason: fmt.Sprintf("session id already active: %s", spec.ID)}
	}
	c.active[spec.ID] = r
	c.mu.Unlock()

	c.persistSessionStart(r)

	r.mu.Lock()
	result, err := c.advance(ctx, r)
	r.mu.Unlock()
	if err != nil {
		c.mu.Lock()
		delete(c.active, spec.ID)
		c.mu.Unlock()
		return nil, err
	}
	return result, nil
}

// Advance executes the next phase of an active session.
func (c *Coordinator) Advance(ctx context.Context, sessionID string) (*core.PhaseResult, error) {
	r, err := c.get(sessionID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.orch.done() {
		return nil, fmt.Errorf("session %s has no phases left", sessionID)
	}
	return c.advance(ctx, r)
}

// advance runs the next phase. Callers hold r.mu. Any phase failure aborts
// the session; the partial transcript stays valid for End.
func (c *Coordinator) advance(ctx context.Context, r *run) (*core.PhaseResult, error) {
	result, err := r.orch.nextPhase(ctx)
	if err != nil {
		r.orch.abort()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	c.persistPhase(r, result)
	return result, nil
}

// End finishes a session, aborting it if phases remain, and returns the
// final result over whatever transcript exists. Metrics are computed from
// available data; duration reflects actual elapsed wall time.
func (c *Coordinator) End(ctx context.Context, sessionID string) (*core.SessionResult, error) {
	r, err := c.get(sessionID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	status := core.StatusCompleted
	if !r.orch.done() {
		r.orch.abort()
	}
	if r.orch.state == StateAborted {
		status = core.StatusAborted
	}

	transcript := r.orch.transcript.All()
	end := time.Now()

	result := &core.SessionResult{
		SessionID:       sessionID,
		Spec:            r.orch.spec,
		Status:          status,
		Transcript:      transcript,
		Metrics:         metrics.Compute(transcript),
		Summary:         r.orch.summary,
		StartTime:       r.start,
		EndTime:         end,
		DurationSeconds: end.Sub(r.start).Seconds(),
	}

	c.persistSessionEnd(r, result)

	c.mu.Lock()
	delete(c.active, sessionID)
	c.mu.Unlock()

	slog.Info("Session ended", "id", sessionID, "status", status,
		"messages", len(transcript), "duration_s", result.DurationSeconds)

	return result, nil
}

// Run drives a session from start to completion and returns its result.
// Cancellation between phases aborts the session and still yields a valid
// partial result.
func (c *Coordinator) Run(ctx context.Context, spec core.SessionSpec) (*core.SessionResult, error) {
	phase, err := c.Start(ctx, spec)
	if err != nil {
		return nil, err
	}
	sessionID := phase.SessionID

	for !phase.Done {
		if c.pacing > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(c.pacing):
			}
		}

		phase, err = c.Advance(ctx, sessionID)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			// End the session so the caller still gets the partial result.
			if result, endErr := c.End(ctx, sessionID); endErr == nil {
				return result, err
			}
			return nil, err
		}
	}

	return c.End(ctx, sessionID)
}

// AddUserMessage appends a moderator/user follow-up to an active session.
// The next discussion phase includes it in its prompt window.
func (c *Coordinator) AddUserMessage(sessionID, content string) (*core.Message, error) {
	r, err := c.get(sessionID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	msg, err := r.orch.addUserMessage(content)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		if dbErr := c.store.AddMessage(msg); dbErr != nil {
			slog.Error("Failed to persist user message", "session", sessionID, "error", dbErr)
		}
	}
	return msg, nil
}

// Transcript returns a snapshot of an active session's transcript.
func (c *Coordinator) Transcript(sessionID string) ([]core.Message, error) {
	r, err := c.get(sessionID)
	if err != nil {
		return nil, err
	}
	return r.orch.transcript.All(), nil
}

// Metrics computes current metrics for an active session's partial
// transcript.
func (c *Coordinator) Metrics(sessionID string) (core.Metrics, error) {
	r, err := c.get(sessionID)
	if err != nil {
		return core.Metrics{}, err
	}
	return metrics.Compute(r.orch.transcript.All()), nil
}

func (c *Coordinator) get(sessionID string) (*run, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.active[sessionID]
	if !ok {
		return nil, &ErrSessionNotFound{ID: sessionID}
	}
	return r, nil
}

func (c *Coordinator) persistSessionStart(r *run) {
	if c.store == nil {
		return
	}

	now := time.Now()
	sess := &core.Session{
		ID:             r.orch.spec.ID,
		Type:           r.orch.spec.Type,
		Topic:          r.orch.spec.Topic,
		Goals:          r.orch.spec.Goals,
		ParticipantIDs: r.orch.spec.ParticipantIDs,
		Rounds:         r.orch.spec.Rounds,
		Status:         core.StatusInProgress,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := c.store.CreateSession(sess); err != nil {
		slog.Error("Failed to persist session", "id", sess.ID, "error", err)
	}
}

func (c *Coordinator) persistPhase(r *run, result *core.PhaseResult) {
	if c.store == nil {
		return
	}

	for i := range result.Messages {
		if err := c.store.AddMessage(&result.Messages[i]); err != nil {
			slog.Error("Failed to persist message", "session", result.SessionID, "error", err)
		}
	}
}

func (c *Coordinator) persistSessionEnd(r *run, result *core.SessionResult) {
	if c.store == nil {
		return
	}

	now := time.Now()
	m := result.Metrics
	sess := &core.Session{
		ID:             result.SessionID,
		Type:           result.Spec.Type,
		Topic:          result.Spec.Topic,
		Goals:          result.Spec.Goals,
		ParticipantIDs: result.Spec.ParticipantIDs,
		Rounds:         result.Spec.Rounds,
		Status:         result.Status,
		Summary:        result.Summary,
		Metrics:        &m,
		CreatedAt:      result.StartTime,
		UpdatedAt:      now,
		CompletedAt:    &now,
	}
	if err := c.store.UpdateSession(sess); err != nil {
		slog.Error("Failed to persist session result", "id", sess.ID, "error", err)
	}
}
