// Package prompt defines the phase prompt templates used to drive persona
// turns.
package prompt

import (
	"bytes"
	"fmt"
	"text/template"
)

// Phase names used across the orchestrator and templates.
const (
	PhaseInitialReaction = "initial_reaction"
	PhaseDiscussion      = "discussion"
	PhaseSynthesis       = "synthesis"
)

// Template is one phase's prompt. MaxSentences is a soft instruction passed
// to the generation service, not a hard truncation.
type Template struct {
	Phase        string `json:"phase" yaml:"phase"`
	MaxSentences int    `json:"max_sentences" yaml:"max_sentences"`
	Text         string `json:"text" yaml:"text"`
}

// Data holds the values a phase template can reference.
type Data struct {
	Topic        string
	Goals        string
	Round        int
	History      string // prior-phase messages, formatted "Name: content"
	MaxSentences int
}

// Render executes the template against data.
func (t Template) Render(data Data) (string, error) {
	if data.MaxSentences == 0 {
		data.MaxSentences = t.MaxSentences
	}

	tmpl, err := template.New(t.Phase).Parse(t.Text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s template: %w", t.Phase, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", t.Phase, err)
	}

	return buf.String(), nil
}

// Set bundles the templates for every phase of a session.
type Set struct {
	InitialReaction Template `yaml:"initial_reaction"`
	Discussion      Template `yaml:"discussion"`
	Synthesis       Template `yaml:"synthesis"`
}

// ForPhase returns the template matching a phase name.
func (s Set) ForPhase(phase string) (Template, error) {
	switch phase {
	case PhaseInitialReaction:
		return s.InitialReaction, nil
	case PhaseDiscussion:
		return s.Discussion, nil
	case PhaseSynthesis:
		return s.Synthesis, nil
	default:
		return Template{}, fmt.Errorf("unknown phase: %s", phase)
	}
}

// DefaultSet returns the built-in phase templates.
func DefaultSet() Set {
	return Set{
		InitialReaction: Template{
			Phase:        PhaseInitialReaction,
			MaxSentences: 4,
			Text: `You are taking part in a feedback session about:

"{{.Topic}}"
{{if .Goals}}
The session goals are: {{.Goals}}
{{end}}
Share your honest initial reaction. What stands out to you first, and why?
Speak in the first person, stay in character, and keep it to at most
{{.MaxSentences}} sentences.

Your initial reaction:`,
		},
		Discussion: Template{
			Phase:        PhaseDiscussion,
			MaxSentences: 5,
			Text: `You are in round {{.Round}} of a group discussion about:

"{{.Topic}}"

Here is what the other participants said in the previous round:
---
{{.History}}
---

React to the others: agree, push back, or build on their points from your own
perspective. Do not repeat yourself. Keep it to at most {{.MaxSentences}}
sentences.

Your response:`,
		},
		Synthesis: Template{
			Phase:        PhaseSynthesis,
			MaxSentences: 8,
			Text: `You are the moderator closing a feedback session on:

"{{.Topic}}"

Full discussion transcript:
---
{{.History}}
---

Summarize the session: the overall reception, the main points of agreement
and disagreement, and the most actionable feedback. Be objective and keep it
to at most {{.MaxSentences}} sentences.

Your summary:`,
		},
	}
}
