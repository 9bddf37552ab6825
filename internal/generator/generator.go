package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"weatherflow/internal/logging"
	"weatherflow/internal/model"
)

type Config struct {
	Stations         int
	Interval         time.Duration
	CollectorURL     string
	DuplicatePercent int // share of readings re-sent with an already-used natural key
}

// Generator feeds the collector with synthetic readings. A configurable
// share of them reuses a recent natural key with changed mutable fields,
// which is what exercises last-write-wins dedup downstream.
type Generator struct {
	cfg    Config
	client *http.Client
	rng    *rand.Rand

	recent []model.Record // ring of recently sent readings

	sent       atomic.Int64
	duplicates atomic.Int64
}

func New(cfg Config) *Generator {
	if cfg.Stations <= 0 {
		cfg.Stations = 3
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &Generator{
		cfg:    cfg,
		client: &http.Client{Timeout: 5 * time.Second},
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run emits one reading per station per tick until ctx is cancelled.
func (g *Generator) Run(ctx context.Context) error {
	logging.L().Info("generator: started",
		"stations", g.cfg.Stations, "interval", g.cfg.Interval,
		"duplicate_percent", g.cfg.DuplicatePercent, "collector", g.cfg.CollectorURL)

	t := time.NewTicker(g.cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			logging.L().Info("generator: stopped", "sent", g.sent.Load(), "duplicates", g.duplicates.Load())
			return ctx.Err()
		case <-t.C:
			for i := range g.cfg.Stations {
				rec := g.Next(i + 1)
				g.post(ctx, rec)
			}
		}
	}
}

// Next produces the reading for one station, occasionally replaying a
// recent natural key.
func (g *Generator) Next(station int) model.Record {
	if len(g.recent) > 0 && g.rng.Intn(100) < g.cfg.DuplicatePercent {
		rec := g.recent[g.rng.Intn(len(g.recent))]
		// Same key, fresh mutable fields and trace.
		rec.Temperature = round1(g.rng.Float64()*45 - 10)
		rec.TraceID = uuid.NewString()
		g.duplicates.Add(1)
		return rec
	}
	rec := model.Record{
		StationID:   fmt.Sprintf("station%d", station),
		Temperature: round1(g.rng.Float64()*45 - 10),
		Humidity:    round1(g.rng.Float64() * 100),
		WindSpeed:   round1(g.rng.Float64() * 30),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		TraceID:     uuid.NewString(),
	}
	g.remember(rec)
	return rec
}

func (g *Generator) remember(rec model.Record) {
	const keep = 64
	g.recent = append(g.recent, rec)
	if len(g.recent) > keep {
		g.recent = g.recent[1:]
	}
}

func (g *Generator) post(ctx context.Context, rec model.Record) {
	body, _ := json.Marshal(rec)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.CollectorURL, bytes.NewReader(body))
	if err != nil {
		logging.Trace(rec.TraceID).Error("generator: build request", "err", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Trace-ID", rec.TraceID)

	resp, err := g.client.Do(req)
	if err != nil {
		logging.Trace(rec.TraceID).Warn("generator: collector unreachable", "err", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logging.Trace(rec.TraceID).Warn("generator: reading rejected", "status", resp.StatusCode)
		return
	}
	g.sent.Add(1)
}

// Sent and Duplicates expose the run counters.
func (g *Generator) Sent() int64       { return g.sent.Load() }
func (g *Generator) Duplicates() int64 { return g.duplicates.Load() }

func round1(v float64) float64 {
	return float64(int(v*10)) / 10
}
