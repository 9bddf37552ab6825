package flush

import (
	"context"
	"testing"
	"time"

	"weatherflow/internal/buffer"
	"weatherflow/internal/stats"
)

func TestScheduler_FlushesAfterInterval(t *testing.T) {
	buf := buffer.New()
	fp := &fakePersister{}
	co := NewCoordinator(buf, fp, stats.NewRegistry())
	s := NewScheduler(co, buf, 40*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	buf.Upsert(rec("a", 1))
	buf.Upsert(rec("b", 2))

	deadline := time.After(2 * time.Second)
	for fp.persisted() == 0 {
		select {
		case <-deadline:
			t.Fatal("scheduler never flushed")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if buf.Size() != 0 {
		t.Fatalf("buffer not drained: %d", buf.Size())
	}
}

func TestScheduler_EmptyBufferNeverPersists(t *testing.T) {
	buf := buffer.New()
	fp := &fakePersister{}
	co := NewCoordinator(buf, fp, stats.NewRegistry())
	s := NewScheduler(co, buf, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)
	time.Sleep(150 * time.Millisecond)
	cancel()

	if fp.persisted() != 0 {
		t.Fatalf("empty buffer must never persist, got %d calls", fp.persisted())
	}
}

func TestScheduler_StopsOnCancel(t *testing.T) {
	buf := buffer.New()
	co := NewCoordinator(buf, &fakePersister{}, stats.NewRegistry())
	s := NewScheduler(co, buf, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
}
