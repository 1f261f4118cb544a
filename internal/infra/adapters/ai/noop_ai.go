package ai

import (
	"context"
	"fmt"

	"github.com/kilka221/assistant/internal/domain/ports/adapter"
)

var _ adapter.CompletionAdapter = (*NoopAdapter)(nil)

// NoopAdapter returns deterministic canned results for dev mode and the
// offline demo: no network, no key, stable sentiment drift.
type NoopAdapter struct {
	Sentiment float64
}

func NewNoopAdapter() *NoopAdapter { return &NoopAdapter{Sentiment: 0.1} }

func (n *NoopAdapter) SendTurn(ctx context.Context, req adapter.TurnRequest) (*adapter.TurnResult, error) {
	return &adapter.TurnResult{
		Response: fmt.Sprintf("%s, расскажи об этом подробнее. Что ты почувствовал(а) в тот момент?", req.UserName),
		Analysis: &adapter.TurnAnalysis{
			Sentiment:          n.Sentiment,
			SentimentReasoning: "Нейтральный факт",
			Status:             "Сбор анамнеза",
			Triggers:           []string{},
			Recommendations:    []string{"Дыхательная пауза"},
		},
		Hypotheses: &adapter.TurnHypotheses{
			Primary: req.Previous.PrimaryHypothesis,
		},
	}, nil
}

func (n *NoopAdapter) InitializeNarrative(ctx context.Context, baseInfo string) (string, error) {
	return "### 1. Бэкграунд\n* **Факт**: " + baseInfo, nil
}
