package ai

import (
	"context"

	"github.com/kilka221/assistant/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.CompletionAdapter = (*limitedCompletion)(nil)

type limitedCompletion struct {
	inner adapter.CompletionAdapter
	sem   chan struct{}
}

// NewLimitedCompletion caps concurrent calls to the provider. Wired
// with maxConcurrent=1 this serializes in-flight completions so one
// turn settles before the next one reaches the network.
func NewLimitedCompletion(inner adapter.CompletionAdapter, maxConcurrent int) adapter.CompletionAdapter {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedCompletion{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedCompletion) SendTurn(ctx context.Context, req adapter.TurnRequest) (*adapter.TurnResult, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.SendTurn(ctx, req)
}

func (l *limitedCompletion) InitializeNarrative(ctx context.Context, baseInfo string) (string, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.InitializeNarrative(ctx, baseInfo)
}
