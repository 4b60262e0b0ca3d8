// Package metrics aggregates session-level analytics from a transcript.
package metrics

import (
	"fmt"
	"sort"

	"github.com/alienxp03/panelist/internal/core"
)

// Neutral defaults for an empty transcript.
const (
	DefaultNPS  = 5.0
	DefaultCSAT = 3.0
)

// NPS/CSAT are linear heuristics over average sentiment: monotonic and
// bounded, nothing more. avg -1..1 maps onto NPS 0..10 and CSAT 1..5.
const (
	npsSlope  = 5.0
	csatSlope = 2.0
)

// Compute aggregates a transcript into Metrics. It is a pure function of
// its input: calling it twice on the same messages yields identical output,
// and it works on partial transcripts just as on completed ones. User and
// moderator messages (no persona id) are excluded from every statistic.
func Compute(transcript []core.Message) core.Metrics {
	var msgs []core.Message
	for _, m := range transcript {
		if m.FromPersona() {
			msgs = append(msgs, m)
		}
	}

	if len(msgs) == 0 {
		return core.Metrics{NPS: DefaultNPS, CSAT: DefaultCSAT}
	}

	m := core.Metrics{TotalMessages: len(msgs)}

	var sum float64
	for _, msg := range msgs {
		sum += msg.SentimentScore
		switch msg.Sentiment {
		case core.SentimentPositive:
			m.Distribution.Positive++
		case core.SentimentNegative:
			m.Distribution.Negative++
		default:
			m.Distribution.Neutral++
		}
	}
	m.AverageSentiment = sum / float64(len(msgs))

	m.NPS = clamp(5+m.AverageSentiment*npsSlope, 0, 10)
	m.CSAT = clamp(3+m.AverageSentiment*csatSlope, 1, 5)

	m.Intervals = intervals(msgs)
	if n := len(m.Intervals); n > 1 {
		m.SentimentShift = m.Intervals[n-1].OverallSentiment - m.Intervals[0].OverallSentiment
	}

	m.Insights = insights(m, msgs)
	m.Recommendations = recommendations(m)

	return m
}

// intervals groups persona messages by round, one entry per phase that has
// spoken, in round order.
func intervals(msgs []core.Message) []core.SentimentInterval {
	byRound := make(map[int][]core.Message)
	var rounds []int
	for _, m := range msgs {
		if _, seen := byRound[m.Round]; !seen {
			rounds = append(rounds, m.Round)
		}
		byRound[m.Round] = append(byRound[m.Round], m)
	}
	sort.Ints(rounds)

	out := make([]core.SentimentInterval, 0, len(rounds))
	for _, round := range rounds {
		group := byRound[round]

		interval := core.SentimentInterval{
			Round:             round,
			PersonaSentiments: make(map[string]float64),
		}

		var sum float64
		perPersonaSums := make(map[string]float64)
		perPersonaCounts := make(map[string]int)
		for _, m := range group {
			sum += m.SentimentScore
			perPersonaSums[m.PersonaID] += m.SentimentScore
			perPersonaCounts[m.PersonaID]++
			if m.CreatedAt.After(interval.Timestamp) {
				interval.Timestamp = m.CreatedAt
			}
		}
		interval.OverallSentiment = sum / float64(len(group))
		for id, s := range perPersonaSums {
			interval.PersonaSentiments[id] = s / float64(perPersonaCounts[id])
		}

		out = append(out, interval)
	}
	return out
}

// personaAverage holds a persona's mean sentiment across the transcript.
type personaAverage struct {
	PersonaID   string
	PersonaName string
	Average     float64
}

// mostNegative returns up to n personas with the lowest average sentiment,
// most negative first. Only personas averaging below zero qualify.
func mostNegative(msgs []core.Message, n int) []personaAverage {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	names := make(map[string]string)
	for _, m := range msgs {
		sums[m.PersonaID] += m.SentimentScore
		counts[m.PersonaID]++
		names[m.PersonaID] = m.PersonaName
	}

	var avgs []personaAverage
	for id, sum := range sums {
		avg := sum / float64(counts[id])
		if avg < 0 {
			avgs = append(avgs, personaAverage{PersonaID: id, PersonaName: names[id], Average: avg})
		}
	}

	sort.Slice(avgs, func(i, j int) bool {
		if avgs[i].Average != avgs[j].Average {
			return avgs[i].Average < avgs[j].Average
		}
		return avgs[i].PersonaID < avgs[j].PersonaID
	})

	if len(avgs) > n {
		avgs = avgs[:n]
	}
	return avgs
}

func insights(m core.Metrics, msgs []core.Message) []string {
	tone := "Neutral"
	if m.AverageSentiment > 0.2 {
		tone = "Positive"
	} else if m.AverageSentiment < -0.2 {
		tone = "Negative"
	}

	trend := "remained stable"
	if m.SentimentShift > 0.1 {
		trend = "improved"
	} else if m.SentimentShift < -0.1 {
		trend = "declined"
	}

	participants := make(map[string]struct{})
	for _, msg := range msgs {
		participants[msg.PersonaID] = struct{}{}
	}

	out := []string{
		fmt.Sprintf("Overall sentiment: %s", tone),
		fmt.Sprintf("Sentiment %s over the course of the session", trend),
		fmt.Sprintf("Engaged %d personas across %d messages", len(participants), len(msgs)),
	}

	for _, p := range mostNegative(msgs, 3) {
		out = append(out, fmt.Sprintf("%s was consistently negative (avg %.2f)", p.PersonaName, p.Average))
	}

	return out
}

func recommendations(m core.Metrics) []string {
	out := []string{
		"Consider the feedback from different persona perspectives",
	}
	if m.Distribution.Negative > 0 {
		out = append(out, "Address concerns raised during the discussion")
	}
	if m.Distribution.Positive > 0 {
		out = append(out, "Leverage positive aspects highlighted by personas")
	}
	if m.SentimentShift < -0.1 {
		out = append(out, "Investigate what turned the discussion negative in later rounds")
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
