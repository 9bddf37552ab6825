package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"weatherflow/internal/model"
)

func TestNext_NoDuplicatesWhenDisabled(t *testing.T) {
	g := New(Config{Stations: 3, DuplicatePercent: 0})
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		rec := g.Next(i%3 + 1)
		if err := rec.Validate(); err != nil {
			t.Fatalf("generated reading invalid: %v (%+v)", err, rec)
		}
		seen[rec.Key()+rec.TraceID] = true
	}
	if len(seen) != 50 {
		t.Fatalf("expected 50 distinct readings, got %d", len(seen))
	}
}

func TestNext_AlwaysDuplicatesAtHundredPercent(t *testing.T) {
	g := New(Config{Stations: 1, DuplicatePercent: 100})
	first := g.Next(1) // seeds the ring
	for i := 0; i < 10; i++ {
		rec := g.Next(1)
		if rec.Key() != first.Key() {
			t.Fatalf("want replayed key %q, got %q", first.Key(), rec.Key())
		}
	}
	if g.Duplicates() != 10 {
		t.Fatalf("want 10 duplicates counted, got %d", g.Duplicates())
	}
}

func TestRun_PostsToCollector(t *testing.T) {
	var mu sync.Mutex
	var received []model.Record
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var rec model.Record
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			t.Errorf("bad body: %v", err)
		}
		if r.Header.Get("X-Trace-ID") == "" {
			t.Error("missing trace header")
		}
		mu.Lock()
		received = append(received, rec)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	g := New(Config{Stations: 2, Interval: 10 * time.Millisecond, CollectorURL: ts.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = g.Run(ctx)

	mu.Lock()
	n := len(received)
	mu.Unlock()
	if n == 0 {
		t.Fatal("no readings reached the collector")
	}
	if g.Sent() == 0 {
		t.Fatal("sent counter not incremented")
	}
}
