// Package agent turns a persona profile plus prompt context into a single
// transcript message.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alienxp03/panelist/internal/core"
	"github.com/alienxp03/panelist/internal/prompt"
	"github.com/alienxp03/panelist/internal/provider"
	"github.com/alienxp03/panelist/internal/sentiment"
)

// PromptContext is everything an agent needs to produce one utterance.
// History is the bounded window the orchestrator selected for the phase;
// the agent never reads the transcript directly.
type PromptContext struct {
	Phase   string
	Topic   string
	Goals   []string
	Round   int
	History []core.Message
}

// Agent is a stateless computation wrapper: one profile in, one message
// out. A single Agent instance serves every persona and every session.
type Agent struct {
	generator provider.Generator
	templates prompt.Set
}

// New creates an agent backed by the given generator and phase templates.
func New(generator provider.Generator, templates prompt.Set) *Agent {
	return &Agent{generator: generator, templates: templates}
}

// Respond produces the persona's message for one turn. It invokes the
// generation service exactly once; retries are the caller's policy. On
// failure it surfaces the provider error instead of a message.
func (a *Agent) Respond(ctx context.Context, profile core.PersonaProfile, pc PromptContext) (*core.Message, error) {
	tmpl, err := a.templates.ForPhase(pc.Phase)
	if err != nil {
		return nil, err
	}

	rendered, err := tmpl.Render(prompt.Data{
		Topic:   pc.Topic,
		Goals:   strings.Join(pc.Goals, ", "),
		Round:   pc.Round,
		History: FormatHistory(pc.History),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt for %s: %w", profile.ID, err)
	}

	fullPrompt := personaPreamble(profile) + "\n\n" + rendered

	content, err := a.generator.Generate(ctx, fullPrompt, tmpl.MaxSentences)
	if err != nil {
		return nil, err
	}

	score := sentiment.Score(content, profile.SentimentBias)

	msg := &core.Message{
		ID:             uuid.New().String(),
		PersonaID:      profile.ID,
		PersonaName:    profile.DisplayName,
		Avatar:         profile.Avatar,
		Content:        strings.TrimSpace(content),
		Sentiment:      score.Label,
		SentimentScore: score.Value,
		Round:          pc.Round,
		CreatedAt:      time.Now(),
	}

	slog.Debug("Persona turn completed",
		"persona", profile.ID, "phase", pc.Phase, "round", pc.Round,
		"sentiment", msg.Sentiment)

	return msg, nil
}

// FormatHistory renders a message window as "Name: content" lines for
// prompt embedding.
func FormatHistory(msgs []core.Message) string {
	if len(msgs) == 0 {
		return "This is the start of the discussion."
	}

	var b strings.Builder
	for _, m := range msgs {
		name := m.PersonaName
		if name == "" {
			name = "Moderator"
		}
		fmt.Fprintf(&b, "%s: %s\n", name, m.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

// personaPreamble builds the identity block that precedes every phase
// prompt. Behavior differences between personas come entirely from this
// data, not from per-persona code.
func personaPreamble(p core.PersonaProfile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a %s.\n", p.DisplayName, p.Role)
	if p.Goal != "" {
		fmt.Fprintf(&b, "Your goal: %s\n", p.Goal)
	}
	if p.Backstory != "" {
		fmt.Fprintf(&b, "Background: %s\n", p.Backstory)
	}

	for _, hint := range behavioralHints(p) {
		b.WriteString(hint)
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func behavioralHints(p core.PersonaProfile) []string {
	var hints []string

	if p.SentimentBias > 0.3 {
		hints = append(hints, "You tend to be optimistic and positive in your responses.")
	} else if p.SentimentBias < -0.3 {
		hints = append(hints, "You tend to be more critical and skeptical in your responses.")
	}

	if p.EngagementLevel > 0.7 {
		hints = append(hints, "You are highly engaged and enthusiastic in discussions.")
	} else if p.EngagementLevel < 0.3 {
		hints = append(hints, "You are more reserved and measured in your participation.")
	}

	if p.ControversyTolerance > 0.7 {
		hints = append(hints, "You are comfortable with controversial topics and debates.")
	} else if p.ControversyTolerance < 0.3 {
		hints = append(hints, "You prefer to avoid controversial topics when possible.")
	}

	return hints
}
