package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alienxp03/panelist/internal/agent"
	"github.com/alienxp03/panelist/internal/core"
	"github.com/alienxp03/panelist/internal/prompt"
	"github.com/alienxp03/panelist/internal/provider"
	"github.com/alienxp03/panelist/internal/transcript"
)

// State is the orchestrator's position in the phase sequence.
type State string

const (
	StateNotStarted      State = "not_started"
	StateInitialReaction State = "initial_reaction"
	StateDiscussion      State = "discussion"
	StateCompleted       State = "completed"
	StateAborted         State = "aborted"
)

// turnRetries is how many extra attempts a failing turn gets before a
// fallback message is substituted.
const turnRetries = 1

// fallbackContent is the clearly-marked substitute when a participant's
// generation fails every retry.
const fallbackContent = "No response available for this turn."

// orchestrator drives one session through its phases: initial reaction,
// the discussion rounds, and (for focus groups) synthesis. Participants
// speak in the fixed order given by the spec; within a phase their turns
// run concurrently because each one only reads prior phases' output.
type orchestrator struct {
	spec       core.SessionSpec
	profiles   []core.PersonaProfile // resolved, in speaking order
	agent      *agent.Agent
	generator  provider.Generator
	templates  prompt.Set
	transcript *transcript.Context

	state     State
	nextRound int // next discussion round to run, 1-based
	summary   string
}

func newOrchestrator(spec core.SessionSpec, profiles []core.PersonaProfile, ag *agent.Agent, gen provider.Generator, templates prompt.Set) *orchestrator {
	return &orchestrator{
		spec:       spec,
		profiles:   profiles,
		agent:      ag,
		generator:  gen,
		templates:  templates,
		transcript: transcript.New(spec.ID),
		state:      StateNotStarted,
		nextRound:  1,
	}
}

// withSynthesis reports whether this session ends with a synthesis phase.
func (o *orchestrator) withSynthesis() bool {
	return o.spec.Type == core.TypeFocusGroup
}

// done reports whether the session has reached a terminal state.
func (o *orchestrator) done() bool {
	return o.state == StateCompleted || o.state == StateAborted
}

// abort moves the orchestrator to its aborted terminal state. The
// transcript keeps whatever phases completed.
func (o *orchestrator) abort() {
	if !o.done() {
		o.state = StateAborted
	}
}

// nextPhase executes the next phase of the session and returns its result.
// Phases are atomic: either every participant's message for the phase is
// appended (successes and fallbacks), or, on cancellation, none are.
func (o *orchestrator) nextPhase(ctx context.Context) (*core.PhaseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch o.state {
	case StateNotStarted:
		msgs, err := o.runTurns(ctx, prompt.PhaseInitialReaction, 0, nil)
		if err != nil {
			return nil, err
		}
		o.state = StateInitialReaction
		if o.spec.Rounds == 0 && !o.withSynthesis() {
			o.state = StateCompleted
		}
		return o.phaseResult(prompt.PhaseInitialReaction, 0, msgs), nil

	case StateInitialReaction, StateDiscussion:
		if o.nextRound <= o.spec.Rounds {
			round := o.nextRound
			window := o.transcript.ByRound(round - 1)
			msgs, err := o.runTurns(ctx, prompt.PhaseDiscussion, round, window)
			if err != nil {
				return nil, err
			}
			o.nextRound++
			o.state = StateDiscussion
			if o.nextRound > o.spec.Rounds && !o.withSynthesis() {
				o.state = StateCompleted
			}
			return o.phaseResult(prompt.PhaseDiscussion, round, msgs), nil
		}
		// Rounds can only be exhausted here with a synthesis phase ahead;
		// sessions without one complete as their last round lands.
		return o.runSynthesis(ctx)

	default:
		return nil, fmt.Errorf("session %s is already %s", o.spec.ID, o.state)
	}
}

func (o *orchestrator) phaseResult(phase string, round int, msgs []core.Message) *core.PhaseResult {
	return &core.PhaseResult{
		SessionID: o.spec.ID,
		Round:     round,
		Phase:     phase,
		Messages:  msgs,
		Done:      o.done(),
	}
}

// turnResult carries one participant's outcome out of the phase fan-out.
type turnResult struct {
	msg *core.Message
	err error
}

// runTurns executes one speaking phase. All participants' generation calls
// fan out concurrently, results are collected, and messages are appended
// in participant order under the transcript's single-writer lock so the
// transcript stays deterministic given the same input order.
func (o *orchestrator) runTurns(ctx context.Context, phase string, round int, window []core.Message) ([]core.Message, error) {
	results := make([]turnResult, len(o.profiles))

	var wg sync.WaitGroup
	for i, profile := range o.profiles {
		wg.Add(1)
		go func(i int, profile core.PersonaProfile) {
			defer wg.Done()
			results[i] = o.runTurn(ctx, profile, phase, round, window)
		}(i, profile)
	}
	wg.Wait()

	// A canceled phase appends nothing; completed phases must hold exactly
	// one message per participant.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	msgs := make([]core.Message, 0, len(o.profiles))
	for i, res := range results {
		msg := res.msg
		if res.err != nil {
			slog.Warn("Turn failed after retries, substituting fallback",
				"session", o.spec.ID, "persona", o.profiles[i].ID,
				"phase", phase, "round", round, "error", res.err)
			msg = o.fallbackMessage(o.profiles[i], round)
		}
		if err := o.transcript.Append(*msg); err != nil {
			return nil, err
		}
		msgs = append(msgs, *msg)
	}

	return msgs, nil
}

// runTurn executes a single participant's turn with the retry policy.
func (o *orchestrator) runTurn(ctx context.Context, profile core.PersonaProfile, phase string, round int, window []core.Message) turnResult {
	pc := agent.PromptContext{
		Phase:   phase,
		Topic:   o.spec.Topic,
		Goals:   o.spec.Goals,
		Round:   round,
		History: window,
	}

	var lastErr error
	for attempt := 0; attempt <= turnRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return turnResult{err: err}
		}
		msg, err := o.agent.Respond(ctx, profile, pc)
		if err == nil {
			return turnResult{msg: msg}
		}
		lastErr = err
	}

	return turnResult{err: lastErr}
}

// fallbackMessage preserves the phase-completeness invariant when a
// participant's generation fails every retry.
func (o *orchestrator) fallbackMessage(profile core.PersonaProfile, round int) *core.Message {
	return &core.Message{
		ID:             uuid.New().String(),
		PersonaID:      profile.ID,
		PersonaName:    profile.DisplayName,
		Avatar:         profile.Avatar,
		Content:        fallbackContent,
		Sentiment:      core.SentimentNeutral,
		SentimentScore: 0,
		Round:          round,
		Fallback:       true,
		CreatedAt:      time.Now(),
	}
}

// runSynthesis closes a focus group with one moderator-level summary call
// over the full transcript. It emits no participant messages; a failed
// call degrades to a placeholder summary rather than failing the session.
func (o *orchestrator) runSynthesis(ctx context.Context) (*core.PhaseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmpl := o.templates.Synthesis
	rendered, err := tmpl.Render(prompt.Data{
		Topic:   o.spec.Topic,
		History: agent.FormatHistory(o.transcript.All()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build synthesis prompt: %w", err)
	}

	summary, err := o.generator.Generate(ctx, rendered, tmpl.MaxSentences)
	if err != nil {
		slog.Warn("Synthesis generation failed", "session", o.spec.ID, "error", err)
		summary = "Summary unavailable: synthesis generation failed."
	}
	o.summary = summary
	o.state = StateCompleted

	result := o.phaseResult(prompt.PhaseSynthesis, core.RoundSynthesis, nil)
	result.Summary = summary
	return result, nil
}

// addUserMessage appends a user/moderator follow-up at the current round so
// the next discussion phase sees it in its window.
func (o *orchestrator) addUserMessage(content string) (*core.Message, error) {
	round := o.transcript.LastRound()
	if round < 0 {
		round = 0
	}

	msg := core.Message{
		ID:          uuid.New().String(),
		PersonaName: "Moderator",
		Content:     content,
		Sentiment:   core.SentimentNeutral,
		Round:       round,
		CreatedAt:   time.Now(),
	}
	if err := o.transcript.Append(msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
