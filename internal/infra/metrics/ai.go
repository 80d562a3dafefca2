package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(aiCallsLatencyMs, aiFallbackServedTotal, transcriptionsTotal)
}

var (
	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "AI call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"model", "success"},
	)

	aiFallbackServedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ai_fallback_served_total",
			Help: "Times the local statistical summary replaced an AI analysis.",
		},
	)

	transcriptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcriptions_total",
			Help: "Voice/audio transcription outcomes.",
		},
		[]string{"success"},
	)
)

func ObserveAICall(model string, latencyMs int, success bool) {
	aiCallsLatencyMs.WithLabelValues(norm(model), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func IncAIFallbackServed() {
	aiFallbackServedTotal.Inc()
}

func IncTranscription(success bool) {
	transcriptionsTotal.WithLabelValues(strconv.FormatBool(success)).Inc()
}
