// Package metrics defines the Prometheus instruments exported by alifbata.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gauges
var (
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "alifbata_sessions_active",
		Help: "Number of live quiz sessions",
	})
)

// Counters
var (
	InvocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alifbata_invocations_total",
		Help: "Retried upstream invocations by final outcome",
	}, []string{"outcome"})
	RetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alifbata_retries_total",
		Help: "Backoff retries by failure class",
	}, []string{"class"})
	DecodeErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alifbata_pcm_decode_errors_total",
		Help: "Total PCM payloads rejected by the decoder",
	})
	FallbackQuizzesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alifbata_fallback_quizzes_total",
		Help: "Quizzes served from the built-in fallback set",
	})
)

// Histograms
var (
	GenerationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "alifbata_generation_duration_ms",
		Help:    "Content generation duration in milliseconds by kind",
		Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000},
	}, []string{"kind"})
)
