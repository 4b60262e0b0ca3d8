package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alienxp03/panelist/internal/core"
	"github.com/alienxp03/panelist/internal/persona"
	"github.com/alienxp03/panelist/internal/prompt"
	"github.com/alienxp03/panelist/internal/provider"
)

// stubGenerator answers every prompt with a fixed reply unless a reply
// function is installed. It records prompts for assertions.
type stubGenerator struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string) (string, error)
}

func (g *stubGenerator) Name() string        { return "stub" }
func (g *stubGenerator) DisplayName() string { return "Stub" }
func (g *stubGenerator) Available() bool     { return true }

func (g *stubGenerator) Generate(ctx context.Context, prompt string, maxSentences int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	reply := g.reply
	g.mu.Unlock()

	if reply != nil {
		return reply(prompt)
	}
	return "This is a great idea and I love the direction.", nil
}

func (g *stubGenerator) setReply(fn func(string) (string, error)) {
	g.mu.Lock()
	g.reply = fn
	g.mu.Unlock()
}

func focusGroupSpec() core.SessionSpec {
	return core.SessionSpec{
		Type:           core.TypeFocusGroup,
		Topic:          "A subscription service for refurbished laptops",
		Goals:          []string{"gauge purchase intent", "surface objections"},
		ParticipantIDs: []string{"tech-enthusiast", "price-sensitive", "skeptical-buyer"},
		Rounds:         3,
	}
}

func newTestCoordinator(t *testing.T, gen provider.Generator, opts ...Option) *Coordinator {
	t.Helper()
	return New(persona.NewRegistry(), gen, opts...)
}

func TestRunFocusGroupFullSession(t *testing.T) {
	gen := &stubGenerator{}
	coord := newTestCoordinator(t, gen)

	result, err := coord.Run(context.Background(), focusGroupSpec())
	require.NoError(t, err)

	assert.Equal(t, core.StatusCompleted, result.Status)
	assert.NotEmpty(t, result.SessionID)
	assert.NotEmpty(t, result.Summary)
	assert.GreaterOrEqual(t, result.DurationSeconds, 0.0)
	assert.False(t, result.EndTime.Before(result.StartTime))

	// 3 initial reactions plus 3 participants x 3 discussion rounds.
	require.Len(t, result.Transcript, 12)

	wantRounds := []int{0, 0, 0, 1, 1, 1, 2, 2, 2, 3, 3, 3}
	wantPersonas := []string{"tech-enthusiast", "price-sensitive", "skeptical-buyer"}
	for i, msg := range result.Transcript {
		assert.Equal(t, wantRounds[i], msg.Round, "round of message %d", i)
		assert.Equal(t, wantPersonas[i%3], msg.PersonaID, "persona of message %d", i)
		assert.Equal(t, result.SessionID, msg.SessionID)
		assert.NotEmpty(t, msg.Content)
	}

	assert.Equal(t, 12, result.Metrics.TotalMessages)
}

func TestRunInterviewSingleParticipant(t *testing.T) {
	gen := &stubGenerator{}
	coord := newTestCoordinator(t, gen)

	spec := core.SessionSpec{
		Type:           core.TypeInterview,
		Topic:          "Weekly grocery delivery habits",
		ParticipantIDs: []string{"data-analyst"},
		Rounds:         2,
	}

	result, err := coord.Run(context.Background(), spec)
	require.NoError(t, err)

	assert.Equal(t, core.StatusCompleted, result.Status)
	// Interviews skip synthesis and leave the summary empty.
	assert.Empty(t, result.Summary)
	require.Len(t, result.Transcript, 3)
	for _, msg := range result.Transcript {
		assert.Equal(t, "data-analyst", msg.PersonaID)
	}
}

func TestRunInterviewZeroRounds(t *testing.T) {
	gen := &stubGenerator{}
	coord := newTestCoordinator(t, gen)

	spec := core.SessionSpec{
		Type:           core.TypeInterview,
		Topic:          "First impressions only",
		ParticipantIDs: []string{"tech-enthusiast"},
		Rounds:         0,
	}

	result, err := coord.Run(context.Background(), spec)
	require.NoError(t, err)

	assert.Equal(t, core.StatusCompleted, result.Status)
	require.Len(t, result.Transcript, 1)
	assert.Equal(t, 0, result.Transcript[0].Round)
}

func TestFocusGroupDefaultsToThreeRounds(t *testing.T) {
	gen := &stubGenerator{}
	coord := newTestCoordinator(t, gen)

	spec := focusGroupSpec()
	spec.Rounds = 0

	result, err := coord.Run(context.Background(), spec)
	require.NoError(t, err)
	assert.Len(t, result.Transcript, 12)
}

func TestPersistentFailureSubstitutesFallback(t *testing.T) {
	gen := &stubGenerator{}
	coord := newTestCoordinator(t, gen)

	start, err := coord.Start(context.Background(), focusGroupSpec())
	require.NoError(t, err)
	id := start.SessionID

	round1, err := coord.Advance(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, round1.Messages, 3)

	// Every attempt for the skeptical buyer fails in round two.
	gen.setReply(func(prompt string) (string, error) {
		if strings.Contains(prompt, "You are Skeptical Buyer") {
			return "", &provider.GenerationError{Provider: "stub", Message: "backend unavailable"}
		}
		return "I still think the pricing works for most people.", nil
	})

	round2, err := coord.Advance(context.Background(), id)
	require.NoError(t, err)

	// The phase still completes with one message per participant.
	require.Len(t, round2.Messages, 3)

	var fallback *core.Message
	for i := range round2.Messages {
		if round2.Messages[i].Fallback {
			fallback = &round2.Messages[i]
		}
	}
	require.NotNil(t, fallback, "expected a fallback message in the failed round")
	assert.Equal(t, "skeptical-buyer", fallback.PersonaID)
	assert.Equal(t, core.SentimentNeutral, fallback.Sentiment)
	assert.Equal(t, 0.0, fallback.SentimentScore)
	assert.Equal(t, 2, fallback.Round)

	gen.setReply(nil)

	// The session is unaffected past the failed turn.
	for {
		phase, err := coord.Advance(context.Background(), id)
		require.NoError(t, err)
		if phase.Done {
			break
		}
	}

	result, err := coord.End(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, result.Status)
	assert.Len(t, result.Transcript, 12)
}

func TestEndAfterInitialPhaseYieldsPartialResult(t *testing.T) {
	gen := &stubGenerator{}
	coord := newTestCoordinator(t, gen)

	start, err := coord.Start(context.Background(), focusGroupSpec())
	require.NoError(t, err)
	require.Len(t, start.Messages, 3)
	assert.False(t, start.Done)

	result, err := coord.End(context.Background(), start.SessionID)
	require.NoError(t, err)

	assert.Equal(t, core.StatusAborted, result.Status)
	assert.Len(t, result.Transcript, 3)
	assert.Equal(t, 3, result.Metrics.TotalMessages)
	assert.GreaterOrEqual(t, result.DurationSeconds, 0.0)

	// The session is gone once ended.
	_, err = coord.Advance(context.Background(), start.SessionID)
	var notFound *ErrSessionNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestCancellationAbortsWithoutPartialPhase(t *testing.T) {
	gen := &stubGenerator{}
	coord := newTestCoordinator(t, gen)

	ctx, cancel := context.WithCancel(context.Background())

	start, err := coord.Start(ctx, focusGroupSpec())
	require.NoError(t, err)
	id := start.SessionID

	cancel()

	_, err = coord.Advance(ctx, id)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// A canceled phase contributes no messages at all.
	transcript, err := coord.Transcript(id)
	require.NoError(t, err)
	assert.Len(t, transcript, 3)

	result, err := coord.End(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusAborted, result.Status)
	assert.Len(t, result.Transcript, 3)
}

func TestRunCancellationReturnsAbortedResult(t *testing.T) {
	gen := &stubGenerator{}
	coord := newTestCoordinator(t, gen, WithPacing(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	var once sync.Once
	gen.setReply(func(prompt string) (string, error) {
		if strings.Contains(prompt, "round 2") {
			once.Do(cancel)
		}
		return "Fine by me.", nil
	})

	result, err := coord.Run(ctx, focusGroupSpec())
	require.NoError(t, err)
	assert.Equal(t, core.StatusAborted, result.Status)
	assert.Less(t, len(result.Transcript), 12)
}

func TestValidationRejectsBadSpecs(t *testing.T) {
	gen := &stubGenerator{}
	coord := newTestCoordinator(t, gen)

	cases := []struct {
		name   string
		mutate func(*core.SessionSpec)
	}{
		{"empty topic", func(s *core.SessionSpec) { s.Topic = "" }},
		{"no participants", func(s *core.SessionSpec) { s.ParticipantIDs = nil }},
		{"negative rounds", func(s *core.SessionSpec) { s.Rounds = -1 }},
		{"unknown persona", func(s *core.SessionSpec) {
			s.ParticipantIDs = []string{"tech-enthusiast", "nobody"}
		}},
		{"duplicate persona", func(s *core.SessionSpec) {
			s.ParticipantIDs = []string{"tech-enthusiast", "tech-enthusiast"}
		}},
		{"interview with two participants", func(s *core.SessionSpec) {
			s.Type = core.TypeInterview
			s.ParticipantIDs = []string{"tech-enthusiast", "data-analyst"}
		}},
		{"focus group with one participant", func(s *core.SessionSpec) {
			s.ParticipantIDs = []string{"tech-enthusiast"}
		}},
		{"unknown type", func(s *core.SessionSpec) { s.Type = "panel" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := focusGroupSpec()
			tc.mutate(&spec)

			_, err := coord.Start(context.Background(), spec)
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr, "expected a configuration error")

			// Validation failures never reach the generation backend.
			gen.mu.Lock()
			calls := len(gen.prompts)
			gen.mu.Unlock()
			assert.Zero(t, calls)
		})
	}
}

func TestUserMessageAppearsInNextWindow(t *testing.T) {
	gen := &stubGenerator{}
	coord := newTestCoordinator(t, gen)

	start, err := coord.Start(context.Background(), focusGroupSpec())
	require.NoError(t, err)
	id := start.SessionID

	msg, err := coord.AddUserMessage(id, "What about battery life?")
	require.NoError(t, err)
	assert.False(t, msg.FromPersona())
	assert.Equal(t, 0, msg.Round)

	gen.mu.Lock()
	gen.prompts = nil
	gen.mu.Unlock()

	_, err = coord.Advance(context.Background(), id)
	require.NoError(t, err)

	gen.mu.Lock()
	defer gen.mu.Unlock()
	require.NotEmpty(t, gen.prompts)
	for _, p := range gen.prompts {
		assert.Contains(t, p, "What about battery life?")
		assert.Contains(t, p, "Moderator:")
	}
}

func TestSynthesisFailureDegradesToPlaceholder(t *testing.T) {
	gen := &stubGenerator{}
	coord := newTestCoordinator(t, gen)

	spec := focusGroupSpec()
	spec.Rounds = 1

	start, err := coord.Start(context.Background(), spec)
	require.NoError(t, err)
	id := start.SessionID

	_, err = coord.Advance(context.Background(), id)
	require.NoError(t, err)

	gen.setReply(func(string) (string, error) {
		return "", &provider.GenerationError{Provider: "stub", Message: "down"}
	})

	synth, err := coord.Advance(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, synth.Done)
	assert.Equal(t, core.RoundSynthesis, synth.Round)
	assert.Empty(t, synth.Messages)
	assert.Contains(t, synth.Summary, "Summary unavailable")

	result, err := coord.End(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, result.Status)
	// Synthesis contributes no transcript messages.
	assert.Len(t, result.Transcript, 6)
}

func TestAdvancePastCompletionFails(t *testing.T) {
	gen := &stubGenerator{}
	coord := newTestCoordinator(t, gen)

	spec := core.SessionSpec{
		Type:           core.TypeInterview,
		Topic:          "Done in one phase",
		ParticipantIDs: []string{"eco-conscious"},
		Rounds:         0,
	}

	start, err := coord.Start(context.Background(), spec)
	require.NoError(t, err)
	require.True(t, start.Done)

	_, err = coord.Advance(context.Background(), start.SessionID)
	assert.Error(t, err)
}

// Parallel Advance calls on the same session must serialize: each completed
// phase holds exactly one message per participant and rounds stay in order.
func TestConcurrentAdvanceSerializesPhases(t *testing.T) {
	gen := &stubGenerator{}
	gen.setReply(func(string) (string, error) {
		// Widen the overlap window between the racing callers.
		time.Sleep(10 * time.Millisecond)
		return "I like where this is going.", nil
	})
	coord := newTestCoordinator(t, gen)

	start, err := coord.Start(context.Background(), focusGroupSpec())
	require.NoError(t, err)
	id := start.SessionID

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = coord.Advance(context.Background(), id)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// One caller ran round 1, the other round 2.
	transcript, err := coord.Transcript(id)
	require.NoError(t, err)
	require.Len(t, transcript, 9)

	perRound := make(map[int]int)
	lastRound := 0
	for _, msg := range transcript {
		perRound[msg.Round]++
		require.GreaterOrEqual(t, msg.Round, lastRound)
		lastRound = msg.Round
	}
	for round := 0; round <= 2; round++ {
		assert.Equal(t, 3, perRound[round], "messages in round %d", round)
	}
}

// A phase failure that is not a cancellation aborts the session: it cannot
// be advanced again, and End reports the aborted status over the partial
// transcript.
func TestPhaseErrorAbortsSession(t *testing.T) {
	gen := &stubGenerator{}

	set := prompt.DefaultSet()
	set.Synthesis.Text = "{{.Topic" // malformed on purpose
	coord := newTestCoordinator(t, gen, WithTemplates(set))

	spec := focusGroupSpec()
	spec.Rounds = 1

	start, err := coord.Start(context.Background(), spec)
	require.NoError(t, err)
	id := start.SessionID

	_, err = coord.Advance(context.Background(), id)
	require.NoError(t, err)

	_, err = coord.Advance(context.Background(), id)
	require.Error(t, err)

	_, err = coord.Advance(context.Background(), id)
	assert.Error(t, err, "aborted session must not accept further phases")

	result, err := coord.End(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusAborted, result.Status)
	assert.Len(t, result.Transcript, 6)
}
