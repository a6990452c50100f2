package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	turnLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tuskchat",
		Subsystem: "chat",
		Name:      "model_latency_seconds",
		Help:      "Chat completion latency in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 60, 120},
	}, []string{"intent"})

	contextSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tuskchat",
		Subsystem: "chat",
		Name:      "context_words",
		Help:      "Words sent to the model per turn",
		Buckets:   prometheus.ExponentialBuckets(16, 2, 10),
	})

	turnErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tuskchat",
		Subsystem: "chat",
		Name:      "errors_total",
		Help:      "Failed turns by stage",
	}, []string{"stage"})
)
