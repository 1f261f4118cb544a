package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/kilka221/assistant/internal/domain"
	"github.com/kilka221/assistant/internal/domain/model"
	"github.com/kilka221/assistant/internal/domain/ports/adapter"
)

// decodeTurnResult validates the model's strict-JSON reply and fails
// closed: an empty body, broken JSON, or out-of-contract field values
// all reject the whole turn rather than letting a partial shape leak
// into engine state.
func decodeTurnResult(raw string) (*adapter.TurnResult, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, domain.ErrEmptyCompletion
	}

	var res adapter.TurnResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResult, err)
	}
	if strings.TrimSpace(res.Response) == "" {
		return nil, fmt.Errorf("%w: missing response text", domain.ErrMalformedResult)
	}

	if res.Analysis != nil {
		s := res.Analysis.Sentiment
		if math.IsNaN(s) || math.IsInf(s, 0) || s < -1.0 || s > 1.0 {
			return nil, fmt.Errorf("%w: sentiment %v out of range", domain.ErrMalformedResult, s)
		}
	}
	if res.Hypotheses != nil {
		if err := checkHypothesis(res.Hypotheses.Primary); err != nil {
			return nil, err
		}
		for _, h := range res.Hypotheses.Secondary {
			if err := checkHypothesis(h); err != nil {
				return nil, err
			}
		}
	}
	return &res, nil
}

func checkHypothesis(h model.Hypothesis) error {
	if h.Confidence < 0 || h.Confidence > 100 {
		return fmt.Errorf("%w: hypothesis confidence %d out of range", domain.ErrMalformedResult, h.Confidence)
	}
	return nil
}
