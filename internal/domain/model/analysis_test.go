//go:build !integration

package model

import (
	"math"
	"testing"
)

func TestSmoothSentiment(t *testing.T) {
	cases := []struct {
		name   string
		prev   float64
		target float64
		want   float64
	}{
		{"upward jump capped", 0.10, 0.90, 0.35},
		{"downward jump capped", 0.10, -0.90, -0.15},
		{"clamped at floor", -0.80, -1.0, -1.0},
		{"clamped at ceiling", 0.90, 1.0, 1.0},
		{"small move passes through", 0.10, 0.20, 0.20},
		{"no change", 0.50, 0.50, 0.50},
		{"from zero baseline", 0, -0.70, -0.25},
		{"rounded to two decimals", 0.111, 0.131, 0.13},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SmoothSentiment(tc.prev, tc.target)
			if got != tc.want {
				t.Errorf("SmoothSentiment(%v, %v) = %v, want %v", tc.prev, tc.target, got, tc.want)
			}
		})
	}
}

func TestSmoothSentimentBounds(t *testing.T) {
	// Whatever the inputs, the result stays in [-1, 1] and within
	// MaxSentimentStep of prev.
	for prev := -1.0; prev <= 1.0; prev += 0.13 {
		for target := -1.0; target <= 1.0; target += 0.17 {
			got := SmoothSentiment(prev, target)
			if got < -1.0 || got > 1.0 {
				t.Fatalf("SmoothSentiment(%v, %v) = %v out of [-1, 1]", prev, target, got)
			}
			// allow rounding slack
			if math.Abs(got-prev) > MaxSentimentStep+0.005 {
				t.Fatalf("SmoothSentiment(%v, %v) = %v moved more than %v", prev, target, got, MaxSentimentStep)
			}
		}
	}
}

func TestNewInitialAnalysis(t *testing.T) {
	a := NewInitialAnalysis("Наблюдение", "Сбор данных")
	if a.Sentiment != 0 {
		t.Errorf("initial sentiment = %v, want 0", a.Sentiment)
	}
	if a.Status != "Наблюдение" {
		t.Errorf("status = %q", a.Status)
	}
	if a.PrimaryHypothesis.Name != "Сбор данных" || a.PrimaryHypothesis.Confidence != 0 {
		t.Errorf("unexpected primary hypothesis: %+v", a.PrimaryHypothesis)
	}
	if a.SecondaryHypotheses == nil || a.Triggers == nil || a.Recommendations == nil {
		t.Error("slice fields must be non-nil so they serialize as [] not null")
	}
}
