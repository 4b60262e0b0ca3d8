// Package sentiment scores generated text on a signed polarity scale.
package sentiment

import (
	"strings"

	"github.com/alienxp03/panelist/internal/core"
)

// Result is the outcome of scoring one piece of text.
type Result struct {
	Label core.SentimentLabel
	Value float64 // -1.0 to 1.0
}

// Lexicon polarity cues. Matching is case-insensitive substring search over
// the whole text, so "loved" counts for "love".
var positiveWords = []string{
	"good", "great", "excellent", "amazing", "wonderful", "fantastic",
	"love", "like", "enjoy", "brilliant", "outstanding", "perfect",
	"impressive", "innovative", "exciting", "valuable", "effective",
	"successful",
}

var negativeWords = []string{
	"bad", "terrible", "awful", "horrible", "hate", "dislike", "wrong",
	"problem", "issue", "worst", "disappointing", "useless", "failed",
	"broken", "concerning", "problematic", "expensive",
}

// How much a unit of persona bias shifts the raw polarity.
const biasWeight = 0.5

// Score computes the sentiment of text, skewed by a persona's disposition.
// It is pure: identical inputs always produce identical results. The label
// is thresholded at zero, so any positive bias can flip a borderline text
// to positive and vice versa. Empty or unrecognized text scores neutral;
// scoring never fails.
func Score(text string, bias float64) Result {
	value := rawPolarity(text) + bias*biasWeight
	value = clamp(value, -1.0, 1.0)

	label := core.SentimentNeutral
	switch {
	case value > 0:
		label = core.SentimentPositive
	case value < 0:
		label = core.SentimentNegative
	}

	return Result{Label: label, Value: value}
}

// rawPolarity maps lexicon hit counts to a base score: a net hit count of n
// is worth 0.3 + n*0.1 in the winning direction.
func rawPolarity(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	lower := strings.ToLower(text)

	positive := 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			positive++
		}
	}

	negative := 0
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			negative++
		}
	}

	switch {
	case positive > negative:
		return 0.3 + float64(positive-negative)*0.1
	case negative > positive:
		return -0.3 - float64(negative-positive)*0.1
	default:
		return 0
	}
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
