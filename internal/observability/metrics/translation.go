package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

type TranslationMetrics struct {
	registry *prometheus.Registry

	chunkTotal       *prometheus.CounterVec
	chunkDuration    *prometheus.HistogramVec
	documentTotal    *prometheus.CounterVec
	documentDuration *prometheus.HistogramVec
	documentInFlight prometheus.Gauge
}

func NewTranslationMetrics(service string) *TranslationMetrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	chunkTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "paper",
			Subsystem:   "translator",
			Name:        "chunk_total",
			Help:        "Translated chunks by outcome.",
			ConstLabels: constLabels,
		},
		[]string{"outcome"},
	)
	chunkDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "paper",
			Subsystem:   "translator",
			Name:        "chunk_duration_seconds",
			Help:        "Chat call duration per chunk by outcome.",
			Buckets:     []float64{1, 2, 5, 10, 20, 30, 60, 120, 300, 600},
			ConstLabels: constLabels,
		},
		[]string{"outcome"},
	)
	documentTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "paper",
			Subsystem:   "translator",
			Name:        "document_total",
			Help:        "Processed documents by status.",
			ConstLabels: constLabels,
		},
		[]string{"status"},
	)
	documentDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "paper",
			Subsystem:   "translator",
			Name:        "document_duration_seconds",
			Help:        "Document processing duration in seconds by status.",
			Buckets:     []float64{1, 10, 30, 60, 300, 600, 1800, 3600, 7200},
			ConstLabels: constLabels,
		},
		[]string{"status"},
	)
	documentInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "paper",
			Subsystem:   "translator",
			Name:        "document_in_flight",
			Help:        "Number of documents being translated.",
			ConstLabels: constLabels,
		},
	)

	registry.MustRegister(chunkTotal, chunkDuration, documentTotal, documentDuration, documentInFlight)

	return &TranslationMetrics{
		registry:         registry,
		chunkTotal:       chunkTotal,
		chunkDuration:    chunkDuration,
		documentTotal:    documentTotal,
		documentDuration: documentDuration,
		documentInFlight: documentInFlight,
	}
}

func (m *TranslationMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *TranslationMetrics) ObserveChunk(outcome domain.ChunkOutcome, duration time.Duration) {
	m.chunkTotal.WithLabelValues(string(outcome)).Inc()
	m.chunkDuration.WithLabelValues(string(outcome)).Observe(duration.Seconds())
}

func (m *TranslationMetrics) StartDocument() {
	m.documentInFlight.Inc()
}

func (m *TranslationMetrics) FinishDocument(status domain.DocumentStatus, duration time.Duration) {
	m.documentInFlight.Dec()
	m.documentTotal.WithLabelValues(string(status)).Inc()
	m.documentDuration.WithLabelValues(string(status)).Observe(duration.Seconds())
}
