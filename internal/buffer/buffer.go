package buffer

import (
	"sort"
	"sync"

	"weatherflow/internal/model"
)

// Buffer holds the latest Record per natural key between flushes. A single
// mutex covers every operation; a Drain never observes a partial Upsert.
type Buffer struct {
	mu      sync.Mutex
	entries map[string]model.Record
}

func New() *Buffer {
	return &Buffer{entries: make(map[string]model.Record)}
}

// Upsert stores rec under its natural key, overwriting any previous entry
// (last-write-wins). It reports whether the key already existed.
func (b *Buffer) Upsert(rec model.Record) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, existed := b.entries[rec.Key()]
	b.entries[rec.Key()] = rec
	return existed
}

// Drain atomically captures and clears the whole buffer. The snapshot is
// returned in key order so batches are deterministic.
func (b *Buffer) Drain() []model.Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) == 0 {
		return nil
	}
	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]model.Record, 0, len(keys))
	for _, k := range keys {
		out = append(out, b.entries[k])
	}
	b.entries = make(map[string]model.Record)
	return out
}

func (b *Buffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Restore re-merges a drained snapshot after a failed persist. Entries
// upserted since the drain are fresher and win; restored records only fill
// keys that are currently absent. Returns how many entries were restored.
func (b *Buffer) Restore(batch []model.Record) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	restored := 0
	for _, rec := range batch {
		if _, ok := b.entries[rec.Key()]; ok {
			continue
		}
		b.entries[rec.Key()] = rec
		restored++
	}
	return restored
}
