package query

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"weatherflow/internal/logging"
	"weatherflow/internal/telemetry"
)

// Server is the read API. Reads go cache-first; a cold or unreachable
// cache degrades to direct store reads and repopulates best-effort.
type Server struct {
	store Store
	cache Cache
	ttl   time.Duration
	srv   *http.Server
}

func NewServer(port int, store Store, cache Cache, ttl time.Duration) *Server {
	s := &Server{store: store, cache: cache, ttl: ttl}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /weather/latest", s.handleLatest)
	mux.HandleFunc("GET /weather", s.handleRange)
	mux.HandleFunc("GET /stations", s.handleStations)
	mux.HandleFunc("GET /health", s.handleHealth)
	s.srv = &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	return s
}

func (s *Server) ListenAndServe() error {
	logging.L().Info("query: listening", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	s.cached(w, cacheKey("latest"), func() (any, error) {
		return s.store.Latest(r.Context())
	})
}

func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	station := r.URL.Query().Get("station_id")
	if station == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "station_id is required"})
		return
	}
	start, err := parseTimeParam(r.URL.Query().Get("start"), time.Time{})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start must be RFC 3339"})
		return
	}
	end, err := parseTimeParam(r.URL.Query().Get("end"), time.Now().UTC())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end must be RFC 3339"})
		return
	}

	key := cacheKey("range", station, start.Format(time.RFC3339), end.Format(time.RFC3339))
	s.cached(w, key, func() (any, error) {
		return s.store.Range(r.Context(), station, start, end)
	})
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	s.cached(w, cacheKey("stations"), func() (any, error) {
		return s.store.Stations(r.Context())
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	resp := map[string]string{"status": "healthy", "service": "query", "postgresql": "connected", "redis": "connected", "trace_id": uuid.NewString()}
	if err := s.store.Ping(ctx); err != nil {
		resp["postgresql"] = "disconnected"
		resp["status"] = "degraded"
	}
	if err := s.cache.Ping(); err != nil {
		resp["redis"] = "disconnected"
		resp["status"] = "degraded"
	}
	writeJSON(w, http.StatusOK, resp)
}

// cached implements the cache-aside read path.
func (s *Server) cached(w http.ResponseWriter, key string, load func() (any, error)) {
	if body, ok := s.cache.Get(key); ok {
		telemetry.CacheHits.WithLabelValues("hit").Inc()
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "hit")
		_, _ = w.Write([]byte(body))
		return
	}
	telemetry.CacheHits.WithLabelValues("miss").Inc()

	v, err := load()
	if err != nil {
		logging.L().Error("query: store read failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store unavailable"})
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "encoding failure"})
		return
	}
	s.cache.Set(key, string(body), s.ttl)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "miss")
	_, _ = w.Write(body)
}

func parseTimeParam(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
