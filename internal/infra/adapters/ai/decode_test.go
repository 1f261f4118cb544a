//go:build !integration

package ai

import (
	"errors"
	"testing"

	"github.com/kilka221/assistant/internal/domain"
)

func TestDecodeTurnResult(t *testing.T) {
	t.Run("valid full shape", func(t *testing.T) {
		raw := `{
			"response": "Понимаю. Что было дальше?",
			"analysis": {
				"sentiment": -0.6,
				"sentiment_reasoning": "жалоба на критику",
				"status": "Сбор анамнеза",
				"triggers": ["критика"],
				"recommendations": ["пауза"]
			},
			"hypotheses": {
				"primary": {"name": "Перфекционизм", "confidence": 60, "reasoning": "..."},
				"secondary": [{"name": "Выгорание", "confidence": 30, "reasoning": "..."}]
			},
			"narrativeUpdate": null
		}`
		res, err := decodeTurnResult(raw)
		if err != nil {
			t.Fatalf("decodeTurnResult: %v", err)
		}
		if res.Response == "" || res.Analysis == nil || res.Hypotheses == nil {
			t.Errorf("decoded shape incomplete: %+v", res)
		}
		if res.Analysis.Sentiment != -0.6 {
			t.Errorf("sentiment = %v", res.Analysis.Sentiment)
		}
		if res.NarrativeUpdate != nil {
			t.Error("null narrativeUpdate must decode to nil")
		}
	})

	t.Run("response only is acceptable", func(t *testing.T) {
		res, err := decodeTurnResult(`{"response": "ok"}`)
		if err != nil {
			t.Fatalf("decodeTurnResult: %v", err)
		}
		if res.Analysis != nil || res.Hypotheses != nil {
			t.Error("absent sections must stay nil")
		}
	})

	t.Run("fails closed", func(t *testing.T) {
		cases := []struct {
			name string
			raw  string
			want error
		}{
			{"empty body", "", domain.ErrEmptyCompletion},
			{"whitespace body", "  \n ", domain.ErrEmptyCompletion},
			{"broken json", `{"response": `, domain.ErrMalformedResult},
			{"plain text", "Извините, я не могу ответить JSON-ом", domain.ErrMalformedResult},
			{"missing response", `{"analysis": {"sentiment": 0}}`, domain.ErrMalformedResult},
			{"blank response", `{"response": "  "}`, domain.ErrMalformedResult},
			{"sentiment above range", `{"response": "ok", "analysis": {"sentiment": 1.5}}`, domain.ErrMalformedResult},
			{"sentiment below range", `{"response": "ok", "analysis": {"sentiment": -2}}`, domain.ErrMalformedResult},
			{"primary confidence out of range", `{"response": "ok", "hypotheses": {"primary": {"name": "x", "confidence": 150}}}`, domain.ErrMalformedResult},
			{"secondary confidence out of range", `{"response": "ok", "hypotheses": {"primary": {"name": "x", "confidence": 50}, "secondary": [{"name": "y", "confidence": -1}]}}`, domain.ErrMalformedResult},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := decodeTurnResult(tc.raw); !errors.Is(err, tc.want) {
					t.Errorf("err = %v, want %v", err, tc.want)
				}
			})
		}
	})
}
