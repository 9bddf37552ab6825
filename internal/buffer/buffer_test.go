package buffer

import (
	"fmt"
	"sync"
	"testing"

	"weatherflow/internal/model"
)

func rec(station, ts string, temp float64) model.Record {
	return model.Record{StationID: station, Temperature: temp, Humidity: 50, WindSpeed: 1, Timestamp: ts}
}

func TestUpsert_LastWriteWins(t *testing.T) {
	b := New()
	if existed := b.Upsert(rec("a", "t1", 10)); existed {
		t.Fatal("first upsert should not report an existing key")
	}
	if existed := b.Upsert(rec("a", "t1", 15)); !existed {
		t.Fatal("second upsert of same key should report existing")
	}
	if b.Size() != 1 {
		t.Fatalf("want size 1, got %d", b.Size())
	}
	got := b.Drain()
	if len(got) != 1 || got[0].Temperature != 15 {
		t.Fatalf("want last value 15, got %+v", got)
	}
}

func TestDrain_ClearsAndOrders(t *testing.T) {
	b := New()
	b.Upsert(rec("c", "t1", 1))
	b.Upsert(rec("a", "t1", 2))
	b.Upsert(rec("b", "t1", 3))

	got := b.Drain()
	if len(got) != 3 {
		t.Fatalf("want 3 records, got %d", len(got))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got[i].StationID != want {
			t.Fatalf("position %d: want %s, got %s", i, want, got[i].StationID)
		}
	}
	if b.Size() != 0 {
		t.Fatalf("buffer not empty after drain: %d", b.Size())
	}
	if b.Drain() != nil {
		t.Fatal("draining an empty buffer should return nil")
	}
}

func TestRestore_LosesToNewerEntries(t *testing.T) {
	b := New()
	b.Upsert(rec("a", "t1", 10))
	b.Upsert(rec("b", "t1", 20))
	snapshot := b.Drain()

	// A fresher reading for key a arrives while the failed flush is in flight.
	b.Upsert(rec("a", "t1", 99))

	if restored := b.Restore(snapshot); restored != 1 {
		t.Fatalf("want 1 restored, got %d", restored)
	}
	got := b.Drain()
	if len(got) != 2 {
		t.Fatalf("want 2 records, got %d", len(got))
	}
	if got[0].StationID != "a" || got[0].Temperature != 99 {
		t.Fatalf("newer entry should win: %+v", got[0])
	}
	if got[1].StationID != "b" || got[1].Temperature != 20 {
		t.Fatalf("missing restored entry: %+v", got[1])
	}
}

func TestConcurrentUpserts(t *testing.T) {
	b := New()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				b.Upsert(rec(fmt.Sprintf("s%d", g), fmt.Sprintf("t%d", i), float64(i)))
			}
		}(g)
	}
	wg.Wait()
	if b.Size() != 800 {
		t.Fatalf("want 800 entries, got %d", b.Size())
	}
}
