// Package signal is the optional external toxicity classifier the engine can
// blend into its rule-based score. The engine treats it as best-effort: any
// transport or parse failure is replaced by Neutral(), never surfaced to the
// user-facing analysis.
package signal

import (
	"context"
)

type Sentiment string

const (
	SentimentPositive = Sentiment("POSITIVE")
	SentimentNegative = Sentiment("NEGATIVE")
	SentimentUnknown  = Sentiment("UNKNOWN")
)

// Assessment is a normalized classifier result: an overall toxicity in [0,1],
// per-category confidence scores, and a coarse sentiment label.
type Assessment struct {
	Toxicity   float64            `json:"toxicity"`
	Categories map[string]float64 `json:"categories"`
	Sentiment  Sentiment          `json:"sentiment"`
}

type Client interface {
	Assess(ctx context.Context, text string) (*Assessment, error)
}

// Neutral is the fail-soft stand-in when no classifier result is available.
func Neutral() *Assessment {
	return &Assessment{
		Toxicity:   0,
		Categories: map[string]float64{},
		Sentiment:  SentimentUnknown,
	}
}

// relative weight of each category when folding a breakdown into one number
var categoryWeights = map[string]float64{
	"threat":        3,
	"identity_hate": 3,
	"insult":        2,
	"severe_toxic":  2,
	"toxic":         1,
	"obscene":       1,
}

// WeightedScore folds the category breakdown into a single weighted sum.
// Categories the weighting table doesn't know about contribute nothing.
func (a *Assessment) WeightedScore() float64 {
	total := 0.0
	for label, score := range a.Categories {
		if w, ok := categoryWeights[label]; ok {
			total += score * w
		}
	}
	return total
}
