package logging

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
)

type Options struct {
	Level   string
	JSON    bool
	Service string
}

var def atomic.Value

func init() {
	cfg := &slog.HandlerOptions{Level: slog.LevelInfo}
	h := slog.NewTextHandler(os.Stderr, cfg)
	def.Store(slog.New(h))
}

func Configure(opts Options) {
	lvl := parseLevel(opts.Level)
	cfg := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(os.Stderr, cfg)
	} else {
		h = slog.NewTextHandler(os.Stderr, cfg)
	}
	l := slog.New(h)
	if opts.Service != "" {
		l = l.With("service", opts.Service)
	}
	def.Store(l)
}

func parseLevel(s string) slog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func L() *slog.Logger {
	l, _ := def.Load().(*slog.Logger)
	return l
}

// Trace returns the default logger tagged with a trace id, the correlation
// attribute carried end to end through collector, topic, and DLQ.
func Trace(id string) *slog.Logger {
	if id == "" {
		id = "unknown"
	}
	return L().With("trace_id", id)
}

func InitFromEnv(service string) {
	lvl := os.Getenv("WEATHERFLOW_LOG_LEVEL")
	jsonStr := os.Getenv("WEATHERFLOW_LOG_JSON")
	json := false
	if b, err := strconv.ParseBool(strings.TrimSpace(jsonStr)); err == nil {
		json = b
	}
	Configure(Options{Level: lvl, JSON: json, Service: service})
}
