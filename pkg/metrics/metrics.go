// Package metrics define las métricas Prometheus del receptor.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los colectores del receptor. Cada instancia tiene su
// propio registry, así varios receptores conviven en un proceso.
type Metrics struct {
	registry *prometheus.Registry

	FramesTotal        *prometheus.CounterVec
	CRCChecksTotal     *prometheus.CounterVec
	CorrectedBitsTotal prometheus.Counter
	ProcessingSeconds  *prometheus.HistogramVec
	ActiveConnections  prometheus.Gauge
}

// New crea los colectores y los registra en un registry nuevo.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		FramesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linklab_receiver_frames_total",
				Help: "Total number of frames processed by outcome",
			},
			[]string{"algorithm", "outcome", "error_kind"},
		),

		CRCChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linklab_receiver_crc_checks_total",
				Help: "CRC-32 verification results",
			},
			[]string{"result"},
		),

		CorrectedBitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "linklab_receiver_hamming_corrected_bits_total",
				Help: "Total number of bits corrected by Hamming(7,4)",
			},
		),

		ProcessingSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linklab_receiver_processing_seconds",
				Help:    "Frame processing latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 20), // 1µs a ~1s
			},
			[]string{"algorithm"},
		),

		ActiveConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "linklab_receiver_active_connections",
				Help: "Number of connected emitters",
			},
		),
	}

	m.registry.MustRegister(
		m.FramesTotal,
		m.CRCChecksTotal,
		m.CorrectedBitsTotal,
		m.ProcessingSeconds,
		m.ActiveConnections,
	)
	return m
}

// Registry devuelve el registry subyacente.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler sirve el registry en el formato de exposición de Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
