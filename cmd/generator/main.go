package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"weatherflow/internal/config"
	"weatherflow/internal/generator"
	"weatherflow/internal/logging"
)

func main() {
	cfgPath := flag.String("config", "weatherflow.yml", "path to config file (optional)")
	flag.Parse()

	logging.InitFromEnv("generator")

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g := generator.New(generator.Config{
		Stations:         cfg.Generator.Stations,
		Interval:         cfg.Generator.Interval,
		CollectorURL:     cfg.Generator.CollectorURL,
		DuplicatePercent: cfg.Generator.DuplicatePercent,
	})
	if err := g.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("generator: %v", err)
	}
}
