package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weatherflow_messages_processed_total",
		Help: "Messages that passed validation and were buffered.",
	})
	DuplicatesDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weatherflow_in_memory_duplicates_total",
		Help: "Repeated natural keys replaced in the buffer before a flush.",
	})
	BatchesPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weatherflow_batches_persisted_total",
		Help: "Flush batches committed to the durable store.",
	})
	RecordsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weatherflow_records_persisted_total",
		Help: "Individual records upserted into the durable store.",
	})
	PersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weatherflow_persist_failures_total",
		Help: "Flush batches whose transaction rolled back.",
	})
	DeadLettered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weatherflow_dead_lettered_total",
		Help: "Malformed payloads routed to the dead-letter topic.",
	})
	DeadLetterFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weatherflow_dead_letter_failures_total",
		Help: "Dead-letter deliveries that were dropped after a send failure.",
	})
	BufferSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "weatherflow_buffer_size",
		Help: "Records currently held in the in-memory buffer.",
	})
	FlushDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "weatherflow_flush_duration_seconds",
		Help:    "Wall time of a drain+persist cycle.",
		Buckets: prometheus.DefBuckets,
	})
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weatherflow_query_cache_total",
		Help: "Query-service cache lookups by outcome.",
	}, []string{"outcome"})
)

// Handler serves the default prometheus registry.
func Handler() http.Handler { return promhttp.Handler() }
