// File: internal/infra/metrics/metrics.go
package metrics

import (
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Completed chat turns by outcome (ok/failed).",
		},
		[]string{"outcome"},
	)

	quotaBlocks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_quota_blocks_total",
			Help: "Count of submissions rejected by the free-tier quota gate.",
		},
	)

	aiTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_in",
			Help: "Sum of prompt (input) tokens per provider/model.",
		},
		[]string{"provider", "model"},
	)

	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "Completion call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"provider", "model", "success"},
	)

	bundleWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bundle_writes_total",
			Help: "Session bundle write-through operations by result.",
		},
		[]string{"result"},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			turnsTotal, quotaBlocks,
			aiTokensIn, aiCallsLatencyMs,
			bundleWrites,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// -------- Chat helpers --------

func TurnCompleted(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	turnsTotal.WithLabelValues(outcome).Inc()
}

func QuotaBlocked() { quotaBlocks.Inc() }

func ObserveCompletionCall(provider, model string, tokensIn, latencyMs int, success bool) {
	aiTokensIn.WithLabelValues(norm(provider), norm(model)).Add(float64(tokensIn))
	aiCallsLatencyMs.WithLabelValues(norm(provider), norm(model), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

// -------- Persistence helpers --------

func BundleWrite(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	bundleWrites.WithLabelValues(result).Inc()
}
