package stats

import (
	"sync/atomic"

	"weatherflow/internal/telemetry"
)

// Registry carries the pipeline's observability counters. Increments are
// safe under concurrent access from the ingestion loop and the flush path,
// and are mirrored into the prometheus metrics.
type Registry struct {
	processed  atomic.Int64
	batches    atomic.Int64
	duplicates atomic.Int64
}

type Snapshot struct {
	MessagesProcessed  int64 `json:"messages_processed"`
	BatchesPersisted   int64 `json:"batches_persisted"`
	InMemoryDuplicates int64 `json:"in_memory_duplicates"`
}

func NewRegistry() *Registry { return &Registry{} }

func (r *Registry) IncProcessed() {
	r.processed.Add(1)
	telemetry.MessagesProcessed.Inc()
}

func (r *Registry) IncBatchesPersisted() {
	r.batches.Add(1)
	telemetry.BatchesPersisted.Inc()
}

func (r *Registry) IncDuplicates() {
	r.duplicates.Add(1)
	telemetry.DuplicatesDetected.Inc()
}

func (r *Registry) Snapshot() Snapshot {
	return Snapshot{
		MessagesProcessed:  r.processed.Load(),
		BatchesPersisted:   r.batches.Load(),
		InMemoryDuplicates: r.duplicates.Load(),
	}
}
