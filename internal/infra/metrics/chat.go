package metrics

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		chatSendsTotal,
		chatRemoteRetries,
		aiCallsLatencyMs,
		aiTokensIn,
		aiTokensOut,
	)
}

var (
	chatSendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_sends_total",
			Help: "Send attempts by outcome (ok, shortcut, busy, rate_limited, remote_failure, transport).",
		},
		[]string{"outcome"},
	)

	chatRemoteRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_remote_retries_total",
			Help: "Retries issued after a 429 from the completion endpoint.",
		},
	)

	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "AI call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"provider", "success"},
	)

	aiTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_in",
			Help: "Estimated prompt (input) tokens per provider.",
		},
		[]string{"provider"},
	)

	aiTokensOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_out",
			Help: "Estimated completion (output) tokens per provider.",
		},
		[]string{"provider"},
	)
)

func IncChatSend(outcome string) {
	chatSendsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncRemoteRetry() {
	chatRemoteRetries.Inc()
}

func ObserveAICall(provider string, latencyMs int64, success bool) {
	aiCallsLatencyMs.WithLabelValues(norm(provider), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func AddTokens(provider string, in, out int) {
	aiTokensIn.WithLabelValues(norm(provider)).Add(float64(in))
	aiTokensOut.WithLabelValues(norm(provider)).Add(float64(out))
}

// norm lower-cases and trims a label value.
func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
