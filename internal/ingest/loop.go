package ingest

import (
	"context"

	"weatherflow/internal/buffer"
	"weatherflow/internal/logging"
	"weatherflow/internal/model"
	"weatherflow/internal/stats"
	"weatherflow/internal/telemetry"
)

// DeadLetter is where malformed input goes.
type DeadLetter interface {
	Route(payload []byte, reason, traceID string)
}

// Flusher is the flush coordinator as the loop sees it.
type Flusher interface {
	Flush(ctx context.Context, reason string) int
}

// Loop processes one source message at a time: parse, validate, upsert,
// and flush synchronously when the buffer crosses the size threshold. The
// source driver does not pull the next message until Handle returns, which
// is the consumption pacing the pipeline relies on.
type Loop struct {
	buf       *buffer.Buffer
	dlq       DeadLetter
	flusher   Flusher
	stats     *stats.Registry
	threshold int
}

func New(buf *buffer.Buffer, dlq DeadLetter, f Flusher, st *stats.Registry, threshold int) *Loop {
	if threshold <= 0 {
		threshold = 100
	}
	return &Loop{buf: buf, dlq: dlq, flusher: f, stats: st, threshold: threshold}
}

// Handle never returns an error for malformed input; those are routed to
// the DLQ and consumption continues.
func (l *Loop) Handle(ctx context.Context, payload []byte) error {
	rec, err := model.Parse(payload)
	if err != nil {
		l.dlq.Route(payload, err.Error(), model.ExtractTraceID(payload))
		return nil
	}
	trace := rec.TraceID
	if trace == "" {
		trace = "unknown"
	}
	if err := rec.Validate(); err != nil {
		l.dlq.Route(payload, err.Error(), trace)
		return nil
	}

	if existed := l.buf.Upsert(rec); existed {
		l.stats.IncDuplicates()
		logging.Trace(trace).Info("ingest: replaced buffered record",
			"station", rec.StationID, "timestamp", rec.Timestamp)
	}
	l.stats.IncProcessed()

	size := l.buf.Size()
	telemetry.BufferSize.Set(float64(size))
	if size >= l.threshold {
		logging.Trace(trace).Info("ingest: size flush", "buffered", size, "threshold", l.threshold)
		l.flusher.Flush(ctx, "size")
	}
	return nil
}
