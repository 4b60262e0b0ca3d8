package metrics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alienxp03/panelist/internal/core"
)

func pm(persona string, round int, score float64) core.Message {
	label := core.SentimentNeutral
	if score > 0 {
		label = core.SentimentPositive
	} else if score < 0 {
		label = core.SentimentNegative
	}
	return core.Message{
		PersonaID:      persona,
		PersonaName:    persona,
		Round:          round,
		Sentiment:      label,
		SentimentScore: score,
	}
}

func TestComputeEmptyTranscript(t *testing.T) {
	m := Compute(nil)

	assert.Zero(t, m.TotalMessages)
	assert.Zero(t, m.Distribution.Positive)
	assert.Zero(t, m.Distribution.Neutral)
	assert.Zero(t, m.Distribution.Negative)
	assert.Equal(t, DefaultNPS, m.NPS)
	assert.Equal(t, DefaultCSAT, m.CSAT)
}

func TestComputeIdempotent(t *testing.T) {
	transcript := []core.Message{
		pm("a", 0, 0.5), pm("b", 0, -0.3), pm("a", 1, 0.2), pm("b", 1, -0.6),
	}

	first := Compute(transcript)
	second := Compute(transcript)
	assert.Equal(t, first, second)
}

func TestComputeExcludesModeratorMessages(t *testing.T) {
	transcript := []core.Message{
		pm("a", 0, 1.0),
		{PersonaID: "", PersonaName: "Moderator", Round: 0, SentimentScore: -1.0, Sentiment: core.SentimentNegative},
	}

	m := Compute(transcript)
	assert.Equal(t, 1, m.TotalMessages)
	assert.InDelta(t, 1.0, m.AverageSentiment, 1e-9)
}

func TestComputeSingleMessage(t *testing.T) {
	m := Compute([]core.Message{pm("solo", 0, 0.4)})

	assert.Equal(t, 1, m.TotalMessages)
	assert.InDelta(t, 0.4, m.AverageSentiment, 1e-9)
	assert.Equal(t, 1, m.Distribution.Positive)
}

func TestDistributionCounts(t *testing.T) {
	m := Compute([]core.Message{
		pm("a", 0, 0.5), pm("b", 0, 0.1), pm("c", 0, 0), pm("d", 0, -0.7),
	})

	assert.Equal(t, 2, m.Distribution.Positive)
	assert.Equal(t, 1, m.Distribution.Neutral)
	assert.Equal(t, 1, m.Distribution.Negative)
}

func TestScoreMappingsBoundedAndMonotonic(t *testing.T) {
	averages := []float64{-1, -0.5, -0.1, 0, 0.1, 0.5, 1}
	var prevNPS, prevCSAT float64 = -1, 0

	for _, avg := range averages {
		m := Compute([]core.Message{pm("a", 0, avg)})

		assert.GreaterOrEqual(t, m.NPS, 0.0)
		assert.LessOrEqual(t, m.NPS, 10.0)
		assert.GreaterOrEqual(t, m.CSAT, 1.0)
		assert.LessOrEqual(t, m.CSAT, 5.0)

		assert.Greater(t, m.NPS, prevNPS, "NPS must grow with sentiment")
		assert.Greater(t, m.CSAT, prevCSAT, "CSAT must grow with sentiment")
		prevNPS, prevCSAT = m.NPS, m.CSAT
	}

	// Zero sentiment sits exactly on the neutral defaults.
	m := Compute([]core.Message{pm("a", 0, 0)})
	assert.Equal(t, DefaultNPS, m.NPS)
	assert.Equal(t, DefaultCSAT, m.CSAT)
}

func TestIntervalsPerPhase(t *testing.T) {
	transcript := []core.Message{
		pm("a", 0, 0.6), pm("b", 0, 0.2),
		pm("a", 1, 0.0), pm("b", 1, -0.4),
		pm("a", 2, -0.5), pm("b", 2, -0.5),
	}

	m := Compute(transcript)
	require.Len(t, m.Intervals, 3)

	assert.Equal(t, 0, m.Intervals[0].Round)
	assert.InDelta(t, 0.4, m.Intervals[0].OverallSentiment, 1e-9)
	assert.InDelta(t, -0.2, m.Intervals[1].OverallSentiment, 1e-9)
	assert.InDelta(t, -0.5, m.Intervals[2].OverallSentiment, 1e-9)

	assert.InDelta(t, 0.6, m.Intervals[0].PersonaSentiments["a"], 1e-9)
	assert.InDelta(t, -0.4, m.Intervals[1].PersonaSentiments["b"], 1e-9)

	// Shift is final phase minus initial phase.
	assert.InDelta(t, -0.9, m.SentimentShift, 1e-9)
}

func TestIntervalsOnPartialTranscript(t *testing.T) {
	// Only the initial-reaction phase has run; metrics must still be valid.
	m := Compute([]core.Message{pm("a", 0, 0.3), pm("b", 0, -0.1)})

	require.Len(t, m.Intervals, 1)
	assert.Equal(t, 0, m.Intervals[0].Round)
	assert.Zero(t, m.SentimentShift)
}

func TestMostNegativeInsight(t *testing.T) {
	transcript := []core.Message{
		pm("grump", 0, -0.8), pm("grump", 1, -0.6),
		pm("cheer", 0, 0.7), pm("cheer", 1, 0.5),
		pm("meh", 0, 0.0),
	}

	m := Compute(transcript)

	found := false
	for _, insight := range m.Insights {
		if strings.Contains(insight, "grump") && strings.Contains(insight, "negative") {
			found = true
		}
	}
	assert.True(t, found, "expected an insight naming the most negative persona, got %v", m.Insights)
}
