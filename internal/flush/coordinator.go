package flush

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"weatherflow/internal/buffer"
	"weatherflow/internal/logging"
	"weatherflow/internal/model"
	"weatherflow/internal/stats"
	"weatherflow/internal/telemetry"
)

// Persister commits one drained batch to durable storage.
type Persister interface {
	Persist(ctx context.Context, batch []model.Record) (int, error)
}

// Coordinator is the single serialization point for flushes. The ingestion
// loop (size trigger), the scheduler (time trigger), the ops surface
// (manual trigger) and shutdown all funnel through Flush; at most one
// drain+persist pair is ever in flight.
type Coordinator struct {
	buf       *buffer.Buffer
	persister Persister
	stats     *stats.Registry

	mu        sync.Mutex // flush gate, TryLock only
	lastFlush atomic.Int64
}

func NewCoordinator(buf *buffer.Buffer, p Persister, st *stats.Registry) *Coordinator {
	c := &Coordinator{buf: buf, persister: p, stats: st}
	c.Touch()
	return c
}

// Flush drains the buffer and persists the snapshot as one transaction.
// If another flush is already in flight it returns 0 immediately rather
// than queueing a redundant one. On persist failure the snapshot is merged
// back into the buffer (newer entries win) and 0 is returned.
func (c *Coordinator) Flush(ctx context.Context, reason string) int {
	if !c.mu.TryLock() {
		logging.L().Debug("flush: already in progress, skipping", "reason", reason)
		return 0
	}
	defer c.mu.Unlock()
	defer c.Touch()

	batch := c.buf.Drain()
	telemetry.BufferSize.Set(float64(c.buf.Size()))
	if len(batch) == 0 {
		logging.L().Debug("flush: nothing to persist", "reason", reason)
		return 0
	}

	start := time.Now()
	n, err := c.persister.Persist(ctx, batch)
	telemetry.FlushDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		telemetry.PersistFailures.Inc()
		restored := c.buf.Restore(batch)
		telemetry.BufferSize.Set(float64(c.buf.Size()))
		logging.L().Error("flush: persist failed, batch restored to buffer",
			"reason", reason, "batch", len(batch), "restored", restored, "err", err)
		return 0
	}

	c.stats.IncBatchesPersisted()
	telemetry.RecordsPersisted.Add(float64(n))
	logging.L().Info("flush: batch persisted", "reason", reason, "records", n)
	return n
}

// Touch resets the flush timer without draining. The scheduler calls it
// when the interval elapses over an empty buffer, so the next record does
// not trigger a spurious immediate flush from the other path.
func (c *Coordinator) Touch() {
	c.lastFlush.Store(time.Now().UnixNano())
}

func (c *Coordinator) LastFlush() time.Time {
	return time.Unix(0, c.lastFlush.Load())
}
