package engine

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"weatherflow/internal/api"
	"weatherflow/internal/flush"
	"weatherflow/internal/ingest"
	"weatherflow/internal/logging"
	"weatherflow/internal/persist"
	"weatherflow/internal/stats"
	"weatherflow/sink"
	"weatherflow/source/kafka"
)

type Engine struct {
	source      kafka.Adapter
	loop        *ingest.Loop
	sched       *flush.Scheduler
	coordinator *flush.Coordinator
	store       *persist.Store
	dlqSink     sink.Adapter
	ops         *api.Server
	stats       *stats.Registry

	shutdownTimeout time.Duration
}

// Run drives consumption, the flush scheduler and the ops server until ctx
// is cancelled, then shuts down in order: stop pulling, final flush, close
// connections. Shutdown is bounded; it completes even when Kafka or the
// store is unreachable.
func (e *Engine) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		emit := func(c context.Context, m kafka.Message) error {
			return e.loop.Handle(c, m.Value)
		}
		err := e.source.Run(gctx, emit)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		e.sched.Run(gctx)
		return nil
	})

	g.Go(func() error {
		err := e.ops.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), e.shutdownTimeout)
		defer cancel()
		return e.ops.Shutdown(shCtx)
	})

	err := g.Wait()
	e.shutdown()
	return err
}

// shutdown drains whatever the buffer still holds and releases resources.
// The final flush runs on a fresh bounded context since the run context is
// already cancelled.
func (e *Engine) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), e.shutdownTimeout)
	defer cancel()

	if n := e.coordinator.Flush(ctx, "shutdown"); n > 0 {
		logging.L().Info("engine: final flush complete", "records", n)
	}
	if err := e.source.Close(); err != nil {
		logging.L().Warn("engine: source close", "err", err)
	}
	if err := e.dlqSink.Close(); err != nil {
		logging.L().Warn("engine: dlq sink close", "err", err)
	}
	e.store.Close()

	snap := e.stats.Snapshot()
	pct := 0.0
	if snap.MessagesProcessed > 0 {
		pct = float64(snap.InMemoryDuplicates) / float64(snap.MessagesProcessed) * 100
	}
	logging.L().Info("engine: final deduplication stats",
		"messages_processed", snap.MessagesProcessed,
		"in_memory_duplicates", snap.InMemoryDuplicates,
		"duplicate_percent", pct)
	logging.L().Info("engine: shutdown complete")
}
