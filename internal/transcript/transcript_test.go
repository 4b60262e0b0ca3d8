package transcript

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alienxp03/panelist/internal/core"
)

func msg(persona string, round int, content string) core.Message {
	return core.Message{
		ID:          fmt.Sprintf("%s-%d", persona, round),
		PersonaID:   persona,
		PersonaName: persona,
		Content:     content,
		Round:       round,
	}
}

func TestAppendSetsSessionID(t *testing.T) {
	ctx := New("sess1")
	require.NoError(t, ctx.Append(msg("p1", 0, "hi")))

	all := ctx.All()
	require.Len(t, all, 1)
	assert.Equal(t, "sess1", all[0].SessionID)
}

func TestAppendRejectsDecreasingRounds(t *testing.T) {
	ctx := New("sess1")
	require.NoError(t, ctx.Append(msg("p1", 0, "a")))
	require.NoError(t, ctx.Append(msg("p2", 1, "b")))

	err := ctx.Append(msg("p1", 0, "late"))
	require.Error(t, err)

	var violation *OrderViolation
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, 1, violation.Last)
	assert.Equal(t, 0, violation.Attempted)

	// Rejected message must not land in the transcript.
	assert.Equal(t, 2, ctx.Len())
}

func TestSynthesisSortsAfterAllRounds(t *testing.T) {
	ctx := New("sess1")
	require.NoError(t, ctx.Append(msg("p1", 0, "a")))
	require.NoError(t, ctx.Append(msg("p1", 3, "b")))

	// Round -1 is synthesis/meta and is valid after any numbered round.
	require.NoError(t, ctx.Append(msg("", core.RoundSynthesis, "summary")))

	// But nothing may follow it except more meta entries.
	require.Error(t, ctx.Append(msg("p1", 4, "straggler")))
	require.NoError(t, ctx.Append(msg("", core.RoundSynthesis, "more meta")))
}

func TestRoundsNonDecreasingInAppendOrder(t *testing.T) {
	ctx := New("sess1")
	rounds := []int{0, 0, 0, 1, 1, 1, 2, 2, 2, core.RoundSynthesis}
	for i, r := range rounds {
		require.NoError(t, ctx.Append(msg(fmt.Sprintf("p%d", i%3), r, "x")))
	}

	prev := -1
	for _, m := range ctx.All() {
		r := rank(m.Round)
		assert.GreaterOrEqual(t, r, prev)
		prev = r
	}
}

func TestWindows(t *testing.T) {
	ctx := New("sess1")
	for round := 0; round <= 2; round++ {
		for _, p := range []string{"alpha", "beta", "gamma"} {
			require.NoError(t, ctx.Append(msg(p, round, fmt.Sprintf("%s r%d", p, round))))
		}
	}

	t.Run("ByRound", func(t *testing.T) {
		got := ctx.ByRound(1)
		require.Len(t, got, 3)
		assert.Equal(t, "alpha", got[0].PersonaID)
		assert.Equal(t, "gamma", got[2].PersonaID)
	})

	t.Run("ByPersona", func(t *testing.T) {
		got := ctx.ByPersona("beta")
		require.Len(t, got, 3)
		for i, m := range got {
			assert.Equal(t, i, m.Round)
		}
	})

	t.Run("LastN", func(t *testing.T) {
		got := ctx.LastN(4)
		require.Len(t, got, 4)
		assert.Equal(t, "gamma", got[0].PersonaID)
		assert.Equal(t, 1, got[0].Round)

		assert.Len(t, ctx.LastN(100), 9)
		assert.Empty(t, ctx.LastN(0))
	})

	t.Run("LastRound", func(t *testing.T) {
		assert.Equal(t, 2, ctx.LastRound())
	})
}

func TestWindowsReturnCopies(t *testing.T) {
	ctx := New("sess1")
	require.NoError(t, ctx.Append(msg("p1", 0, "original")))

	view := ctx.All()
	view[0].Content = "tampered"

	assert.Equal(t, "original", ctx.All()[0].Content)
}
