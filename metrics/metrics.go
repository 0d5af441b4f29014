// Package metrics registers the relay's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ActiveSessions   prometheus.Gauge
	CommandsReceived *prometheus.CounterVec
	ProtocolErrors   prometheus.Counter

	ChunksProcessed prometheus.Counter
	JobFailures     *prometheus.CounterVec
	EventsEmitted   *prometheus.CounterVec

	TranscribeDuration prometheus.Histogram
	GenerateDuration   prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "murmur_active_sessions",
			Help: "Open relay sessions",
		}),
		CommandsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "murmur_commands_received_total",
			Help: "Inbound commands by type",
		}, []string{"type"}),
		ProtocolErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "murmur_protocol_errors_total",
			Help: "Malformed inbound commands",
		}),
		ChunksProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "murmur_chunks_processed_total",
			Help: "Chunk jobs run to completion, success or failure",
		}),
		JobFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "murmur_job_failures_total",
			Help: "Chunk job failures by fault kind",
		}, []string{"kind"}),
		EventsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "murmur_events_emitted_total",
			Help: "Outbound events by type",
		}, []string{"type"}),
		TranscribeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "murmur_transcribe_duration_seconds",
			Help:    "Latency of speech-to-text backend calls",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		GenerateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "murmur_generate_duration_seconds",
			Help:    "Latency of text-generation backend calls",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}
}
