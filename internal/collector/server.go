package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"weatherflow/internal/dlq"
	"weatherflow/internal/logging"
	"weatherflow/internal/model"
	"weatherflow/sink"
)

// Server is the ingestion front door: it validates POSTed readings before
// they ever reach the topic, so the consumer's DLQ only sees payloads that
// bypassed it or rotted in flight.
type Server struct {
	out    sink.Adapter
	topic  string
	router *dlq.Router
	srv    *http.Server
}

func New(port int, out sink.Adapter, topic, dlqTopic string) *Server {
	s := &Server{out: out, topic: topic, router: dlq.NewRouter(out, dlqTopic)}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /weather-data", s.handleIngest)
	mux.HandleFunc("GET /health", s.handleHealth)
	s.srv = &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	return s
}

func (s *Server) ListenAndServe() error {
	logging.L().Info("collector: listening", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}

	trace := r.Header.Get("X-Trace-ID")
	if trace == "" {
		trace = model.ExtractTraceID(body)
	}
	if trace == "" || trace == "unknown" {
		trace = uuid.NewString()
	}
	log := logging.Trace(trace)

	rec, err := model.Parse(body)
	if err == nil {
		err = rec.Validate()
	}
	if err != nil {
		log.Warn("collector: rejecting malformed reading", "err", err)
		s.router.Route(body, err.Error(), trace)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "trace_id": trace})
		return
	}

	rec.TraceID = trace
	payload, _ := json.Marshal(rec)
	if err := s.out.Push(sink.Message{Topic: s.topic, Key: []byte(rec.StationID), Value: payload}); err != nil {
		log.Error("collector: produce failed", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "message source unavailable", "trace_id": trace})
		return
	}
	log.Info("collector: reading accepted", "station", rec.StationID, "timestamp", rec.Timestamp)
	writeJSON(w, http.StatusOK, map[string]string{"status": "received", "trace_id": trace})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]string{"status": "healthy", "service": "collector", "kafka": "connected", "trace_id": uuid.NewString()}
	if p, ok := s.out.(sink.Pinger); ok {
		if err := p.Ping(); err != nil {
			resp["status"] = "degraded"
			resp["kafka"] = "disconnected"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
