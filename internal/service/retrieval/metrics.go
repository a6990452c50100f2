package retrieval

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	retrievalLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tuskchat",
		Subsystem: "retrieval",
		Name:      "latency_seconds",
		Help:      "Knowledge retrieval latency in seconds, including the query embedding",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"intent"})

	retrievalChunks = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tuskchat",
		Subsystem: "retrieval",
		Name:      "chunks_returned",
		Help:      "Number of chunks returned per retrieval",
		Buckets:   []float64{0, 1, 2, 3, 5, 10},
	}, []string{"intent"})

	retrievalErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tuskchat",
		Subsystem: "retrieval",
		Name:      "errors_total",
		Help:      "Total retrieval failures by reason",
	}, []string{"reason"})
)
