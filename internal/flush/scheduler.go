package flush

import (
	"context"
	"time"

	"weatherflow/internal/buffer"
	"weatherflow/internal/logging"
)

// Scheduler triggers time-based flushes. It wakes at a quarter of the
// configured interval so shutdown stays responsive, and flushes only when
// the interval has elapsed since the last flush and the buffer is
// non-empty.
type Scheduler struct {
	co       *Coordinator
	buf      *buffer.Buffer
	interval time.Duration
}

func NewScheduler(co *Coordinator, buf *buffer.Buffer, interval time.Duration) *Scheduler {
	return &Scheduler{co: co, buf: buf, interval: interval}
}

func (s *Scheduler) Run(ctx context.Context) {
	tick := s.interval / 4
	if tick <= 0 {
		tick = time.Second
	}
	logging.L().Info("scheduler: started", "interval", s.interval)
	t := time.NewTicker(tick)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.L().Info("scheduler: stopped")
			return
		case <-t.C:
			elapsed := time.Since(s.co.LastFlush())
			if elapsed < s.interval {
				continue
			}
			if s.buf.Size() == 0 {
				// Reset the timer anyway; an empty buffer never persists.
				s.co.Touch()
				continue
			}
			logging.L().Info("scheduler: interval flush", "elapsed", elapsed.Round(time.Millisecond), "buffered", s.buf.Size())
			s.co.Flush(ctx, "interval")
		}
	}
}
