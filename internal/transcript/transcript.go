// Package transcript holds the append-only message sequence of one session.
package transcript

import (
	"fmt"
	"math"
	"sync"

	"github.com/alienxp03/panelist/internal/core"
)

// OrderViolation is returned when an append would make transcript round
// numbers decrease. It signals orchestrator misuse, not a runtime condition
// to recover from.
type OrderViolation struct {
	Last      int
	Attempted int
}

func (e *OrderViolation) Error() string {
	return fmt.Sprintf("transcript order violation: round %d after round %d", e.Attempted, e.Last)
}

// rank maps a round number to its transcript ordering position. Synthesis
// and meta entries (round -1) sort after every numbered round.
func rank(round int) int {
	if round == core.RoundSynthesis {
		return math.MaxInt
	}
	return round
}

// Context is the ordered transcript of one session. Appends are mutex
// guarded so concurrent phase turns get a well-defined order; windows are
// computed on read and returned as copies.
type Context struct {
	mu        sync.RWMutex
	sessionID string
	messages  []core.Message
}

// New creates an empty transcript context for a session.
func New(sessionID string) *Context {
	return &Context{sessionID: sessionID}
}

// SessionID returns the owning session's id.
func (c *Context) SessionID() string {
	return c.sessionID
}

// Append adds a message to the end of the transcript. It fails with
// OrderViolation if the message's round would sort before the last
// appended one. There is no way to edit or delete appended messages.
func (c *Context) Append(msg core.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n := len(c.messages); n > 0 {
		last := c.messages[n-1].Round
		if rank(msg.Round) < rank(last) {
			return &OrderViolation{Last: last, Attempted: msg.Round}
		}
	}

	msg.SessionID = c.sessionID
	c.messages = append(c.messages, msg)
	return nil
}

// Len returns the number of appended messages.
func (c *Context) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// All returns a copy of the full transcript in append order.
func (c *Context) All() []core.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]core.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// ByRound returns all messages of one round, in append order. Discussion
// prompts for round R read round R-1 across all participants through this.
func (c *Context) ByRound(round int) []core.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []core.Message
	for _, m := range c.messages {
		if m.Round == round {
			out = append(out, m)
		}
	}
	return out
}

// ByPersona returns all messages produced by one persona.
func (c *Context) ByPersona(personaID string) []core.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []core.Message
	for _, m := range c.messages {
		if m.PersonaID == personaID {
			out = append(out, m)
		}
	}
	return out
}

// LastN returns the last n messages overall.
func (c *Context) LastN(n int) []core.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if n <= 0 {
		return nil
	}
	start := len(c.messages) - n
	if start < 0 {
		start = 0
	}

	out := make([]core.Message, len(c.messages)-start)
	copy(out, c.messages[start:])
	return out
}

// LastRound returns the highest numbered round with at least one message,
// or -1 if no numbered round has spoken yet.
func (c *Context) LastRound() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	last := -1
	for _, m := range c.messages {
		if m.Round > last {
			last = m.Round
		}
	}
	return last
}
