//go:build !integration

package ai

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kilka221/assistant/internal/domain/ports/adapter"
)

type gaugeAdapter struct {
	inFlight int32
	peak     int32
}

func (g *gaugeAdapter) SendTurn(ctx context.Context, req adapter.TurnRequest) (*adapter.TurnResult, error) {
	n := atomic.AddInt32(&g.inFlight, 1)
	for {
		p := atomic.LoadInt32(&g.peak)
		if n <= p || atomic.CompareAndSwapInt32(&g.peak, p, n) {
			break
		}
	}
	defer atomic.AddInt32(&g.inFlight, -1)
	return &adapter.TurnResult{Response: "ok"}, nil
}

func (g *gaugeAdapter) InitializeNarrative(ctx context.Context, baseInfo string) (string, error) {
	return baseInfo, nil
}

func TestLimitedCompletion(t *testing.T) {
	t.Run("caps concurrency", func(t *testing.T) {
		gauge := &gaugeAdapter{}
		limited := NewLimitedCompletion(gauge, 2)

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := limited.SendTurn(context.Background(), adapter.TurnRequest{NewText: "x"}); err != nil {
					t.Error(err)
				}
			}()
		}
		wg.Wait()

		if peak := atomic.LoadInt32(&gauge.peak); peak > 2 {
			t.Errorf("peak concurrency = %d, want <= 2", peak)
		}
	})

	t.Run("non-positive limit passes through", func(t *testing.T) {
		gauge := &gaugeAdapter{}
		if got := NewLimitedCompletion(gauge, 0); got != adapter.CompletionAdapter(gauge) {
			t.Error("expected the inner adapter unchanged")
		}
	})
}
