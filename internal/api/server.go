package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"weatherflow/internal/buffer"
	"weatherflow/internal/logging"
	"weatherflow/internal/stats"
	"weatherflow/internal/telemetry"
)

// Flusher lets POST /flush force a synchronous flush.
type Flusher interface {
	Flush(ctx context.Context, reason string) int
}

// CheckFunc probes one dependency; a non-nil error marks /health degraded.
type CheckFunc func(ctx context.Context) error

// Server is the consumer's operational surface: /health, /stats, /flush
// and /metrics. It is a thin wrapper over the core, never a data path.
type Server struct {
	stats   *stats.Registry
	buf     *buffer.Buffer
	flusher Flusher
	checks  map[string]CheckFunc
	srv     *http.Server
}

func New(port int, st *stats.Registry, buf *buffer.Buffer, f Flusher, checks map[string]CheckFunc) *Server {
	s := &Server{stats: st, buf: buf, flusher: f, checks: checks}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("POST /flush", s.handleFlush)
	mux.Handle("GET /metrics", telemetry.Handler())
	s.srv = &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	return s
}

func (s *Server) ListenAndServe() error {
	logging.L().Info("ops server: listening", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	trace := uuid.NewString()
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := map[string]string{
		"status":   "healthy",
		"service":  "consumer",
		"trace_id": trace,
	}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			resp[name] = "disconnected"
			resp["status"] = "degraded"
			logging.Trace(trace).Warn("health check failed", "dependency", name, "err", err)
		} else {
			resp[name] = "connected"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	snap := s.stats.Snapshot()
	writeJSON(w, http.StatusOK, map[string]int64{
		"messages_processed":   snap.MessagesProcessed,
		"batches_persisted":    snap.BatchesPersisted,
		"buffer_size":          int64(s.buf.Size()),
		"in_memory_duplicates": snap.InMemoryDuplicates,
	})
}

func (s *Server) handleFlush(w http.ResponseWriter, r *http.Request) {
	n := s.flusher.Flush(r.Context(), "manual")
	msg := "buffer flushed"
	if n == 0 {
		msg = "no data to flush"
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": msg, "flushed": n})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
