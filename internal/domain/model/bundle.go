package model

import (
	"encoding/json"
	"fmt"

	"github.com/kilka221/assistant/internal/domain"
)

// SessionBundle is the unit of persistence for one identity: the full
// transcript, the rolling analysis, the chart series and the profile.
type SessionBundle struct {
	Messages  []Message        `json:"messages"`
	Analysis  ClinicalAnalysis `json:"analysis"`
	ChartData []ChartDataPoint `json:"chartData"`
	Profile   UserProfile      `json:"profile"`
}

// NewEmptyBundle is the decode target for stored blobs: every field at
// its default so a blob missing keys merges forward-compatibly.
func NewEmptyBundle(initialStatus, initialHypothesis string) *SessionBundle {
	return &SessionBundle{
		Messages:  []Message{},
		Analysis:  NewInitialAnalysis(initialStatus, initialHypothesis),
		ChartData: []ChartDataPoint{},
		Profile:   DefaultProfile(),
	}
}

// NewSeededBundle is the first-login state: a single assistant greeting
// and everything else at defaults.
func NewSeededBundle(welcome, initialStatus, initialHypothesis string) *SessionBundle {
	b := NewEmptyBundle(initialStatus, initialHypothesis)
	b.Messages = append(b.Messages, NewMessage(RoleAssistant, welcome))
	return b
}

// DecodeBundle merges a stored blob over an empty-defaults bundle.
// Returns an error on corrupt JSON; the caller falls back to a seed.
func DecodeBundle(blob []byte, initialStatus, initialHypothesis string) (*SessionBundle, error) {
	b := NewEmptyBundle(initialStatus, initialHypothesis)
	if err := json.Unmarshal(blob, b); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptedBundle, err)
	}
	if b.Messages == nil {
		b.Messages = []Message{}
	}
	if b.ChartData == nil {
		b.ChartData = []ChartDataPoint{}
	}
	normalizeAnalysis(&b.Analysis)
	return b, nil
}

func normalizeAnalysis(a *ClinicalAnalysis) {
	if a.SecondaryHypotheses == nil {
		a.SecondaryHypotheses = []Hypothesis{}
	}
	if a.Triggers == nil {
		a.Triggers = []string{}
	}
	if a.Recommendations == nil {
		a.Recommendations = []string{}
	}
}

// Encode serializes the bundle for the key-value store.
func (b *SessionBundle) Encode() ([]byte, error) {
	return json.Marshal(b)
}

func (b *SessionBundle) AppendMessage(m Message) {
	b.Messages = append(b.Messages, m)
}

// LastChartSentiment is the smoothing baseline: the most recent charted
// sentiment, or 0 before the first point.
func (b *SessionBundle) LastChartSentiment() float64 {
	if len(b.ChartData) == 0 {
		return 0
	}
	return b.ChartData[len(b.ChartData)-1].Sentiment
}

// AppendChartPoint appends one point with step == len(chartData)+1.
func (b *SessionBundle) AppendChartPoint(sentiment float64, status, reason string) ChartDataPoint {
	p := ChartDataPoint{
		Step:      len(b.ChartData) + 1,
		Sentiment: sentiment,
		Status:    status,
		Reason:    reason,
	}
	b.ChartData = append(b.ChartData, p)
	return p
}

// Clone deep-copies the bundle so snapshots handed to the view layer
// cannot alias engine-owned state.
func (b *SessionBundle) Clone() *SessionBundle {
	cp := &SessionBundle{
		Messages:  make([]Message, len(b.Messages)),
		Analysis:  b.Analysis,
		ChartData: make([]ChartDataPoint, len(b.ChartData)),
		Profile:   b.Profile,
	}
	copy(cp.Messages, b.Messages)
	copy(cp.ChartData, b.ChartData)
	cp.Analysis.SecondaryHypotheses = append([]Hypothesis(nil), b.Analysis.SecondaryHypotheses...)
	cp.Analysis.Triggers = append([]string(nil), b.Analysis.Triggers...)
	cp.Analysis.Recommendations = append([]string(nil), b.Analysis.Recommendations...)
	return cp
}
