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

	"weatherflow/internal/collector"
	"weatherflow/internal/config"
	"weatherflow/internal/logging"
	"weatherflow/sink"
	sinkkafka "weatherflow/sink/kafka"
)

func main() {
	cfgPath := flag.String("config", "weatherflow.yml", "path to config file (optional)")
	flag.Parse()

	logging.InitFromEnv("collector")

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	out, err := sink.NewAdapter("kafka")
	if err != nil {
		log.Fatalf("sink: %v", err)
	}
	if err := out.Configure(sinkkafka.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic, Acks: -1}); err != nil {
		log.Fatalf("sink: %v", err)
	}
	defer out.Close()

	srv := collector.New(cfg.CollectorPort, out, cfg.Kafka.Topic, cfg.Kafka.DLQTopic)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("collector: %v", err)
	}
}
