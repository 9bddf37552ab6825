package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"weatherflow/internal/config"
	"weatherflow/internal/engine"
	"weatherflow/internal/logging"

	_ "weatherflow/sink/kafka"
	_ "weatherflow/sink/stdout"
	_ "weatherflow/source/kafka"
)

func main() {
	cfgPath := flag.String("config", "weatherflow.yml", "path to config file (optional)")
	flag.Parse()

	logging.InitFromEnv("consumer")

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := engine.Bootstrap(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	if err := e.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("engine: %v", err)
	}
}
