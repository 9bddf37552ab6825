package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"weatherflow/internal/config"
	"weatherflow/internal/logging"
	"weatherflow/internal/persist"
	"weatherflow/internal/query"
)

func main() {
	cfgPath := flag.String("config", "weatherflow.yml", "path to config file (optional)")
	flag.Parse()

	logging.InitFromEnv("query")

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := query.OpenStore(ctx, persist.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
	})
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	cache := query.NewRedisCache(cfg.Redis.Addr)

	srv := query.NewServer(cfg.QueryPort, store, cache, cfg.Redis.CacheTTL)
	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("query: %v", err)
	}
}
