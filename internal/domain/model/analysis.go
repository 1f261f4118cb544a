package model

import "math"

// Hypothesis is a named, confidence-scored explanatory claim about the
// user's psychological state, produced by the model.
type Hypothesis struct {
	Name       string `json:"name"`
	Confidence int    `json:"confidence"` // 0..100
	Reasoning  string `json:"reasoning"`
}

// ClinicalAnalysis is the rolling analysis record for a session.
// Replaced wholesale on each successful turn except for sentiment,
// which is smoothed (see SmoothSentiment).
type ClinicalAnalysis struct {
	Sentiment           float64      `json:"sentiment"` // -1.0..1.0
	Status              string       `json:"status"`
	SentimentReasoning  string       `json:"sentimentReasoning,omitempty"`
	PrimaryHypothesis   Hypothesis   `json:"primaryHypothesis"`
	SecondaryHypotheses []Hypothesis `json:"secondaryHypotheses"`
	Triggers            []string     `json:"triggers"`
	Recommendations     []string     `json:"recommendations"`
}

// NewInitialAnalysis seeds the record for a fresh session. Status and
// hypothesis name come from the caller so they can be localized.
func NewInitialAnalysis(status, hypothesisName string) ClinicalAnalysis {
	return ClinicalAnalysis{
		Sentiment:           0,
		Status:              status,
		PrimaryHypothesis:   Hypothesis{Name: hypothesisName, Confidence: 0, Reasoning: "..."},
		SecondaryHypotheses: []Hypothesis{},
		Triggers:            []string{},
		Recommendations:     []string{},
	}
}

// ChartDataPoint is one appended point of the sentiment trend series.
// Points are never mutated retroactively.
type ChartDataPoint struct {
	Step      int     `json:"step"`
	Sentiment float64 `json:"sentiment"`
	Status    string  `json:"status"`
	Reason    string  `json:"reason,omitempty"`
}

// MaxSentimentStep caps how far the charted sentiment may move per turn.
// The model's raw readings are jumpy; clamping the delta keeps the trend
// line continuous and stops one extreme reading from dominating.
const MaxSentimentStep = 0.25

// SmoothSentiment steps prev towards target by at most MaxSentimentStep,
// clamps to [-1, 1] and rounds to two decimal places.
func SmoothSentiment(prev, target float64) float64 {
	delta := target - prev
	if delta > MaxSentimentStep {
		delta = MaxSentimentStep
	}
	if delta < -MaxSentimentStep {
		delta = -MaxSentimentStep
	}
	v := prev + delta
	if v > 1.0 {
		v = 1.0
	}
	if v < -1.0 {
		v = -1.0
	}
	return math.Round(v*100) / 100
}
