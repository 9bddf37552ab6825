package engine

import (
	"context"
	"fmt"
	"time"

	"weatherflow/internal/api"
	"weatherflow/internal/buffer"
	"weatherflow/internal/config"
	"weatherflow/internal/dlq"
	"weatherflow/internal/flush"
	"weatherflow/internal/ingest"
	"weatherflow/internal/logging"
	"weatherflow/internal/persist"
	"weatherflow/internal/stats"
	"weatherflow/sink"
	sinkkafka "weatherflow/sink/kafka"
	"weatherflow/source/kafka"
)

// Bootstrap builds the consumer: durable store, buffer, flush machinery,
// DLQ producer, source driver and ops server, all owned by one Engine
// instance and passed explicitly rather than living as globals.
func Bootstrap(ctx context.Context, cfg config.Config) (*Engine, error) {
	// 1. durable store; the pool connects lazily so a store that is down at
	// boot shows up as /health degraded instead of a crash loop
	store, err := persist.Open(ctx, persist.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		logging.L().Warn("engine: schema check deferred, store unreachable", "err", err)
	}

	// 2. core state
	buf := buffer.New()
	st := stats.NewRegistry()
	co := flush.NewCoordinator(buf, store, st)

	// 3. dead-letter producer
	dlqSink, err := sink.NewAdapter(cfg.Kafka.SinkDriver)
	if err != nil {
		return nil, err
	}
	var sinkCfg any
	if cfg.Kafka.SinkDriver == "kafka" {
		sinkCfg = sinkkafka.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.DLQTopic, Acks: -1}
	}
	if err := dlqSink.Configure(sinkCfg); err != nil {
		return nil, fmt.Errorf("dlq sink: %w", err)
	}
	router := dlq.NewRouter(dlqSink, cfg.Kafka.DLQTopic)

	// 4. ingestion loop + source driver
	loop := ingest.New(buf, router, co, st, cfg.Batch.Size)
	src, err := kafka.NewAdapter(cfg.Kafka.Driver)
	if err != nil {
		return nil, err
	}
	kcfg, err := kafka.LoadConfig(cfg.Kafka.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("kafka config: %w", err)
	}
	kcfg.Brokers = cfg.Kafka.Brokers
	kcfg.Topics = []string{cfg.Kafka.Topic}
	kcfg.GroupID = cfg.Kafka.GroupID
	if err := src.Configure(kcfg); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	// 5. time-based flushes
	sched := flush.NewScheduler(co, buf, cfg.Batch.Interval)

	// 6. ops surface
	checks := map[string]api.CheckFunc{
		"postgresql": store.Ping,
		"kafka": func(context.Context) error {
			if p, ok := src.(kafka.Pinger); ok {
				return p.Ping()
			}
			return nil
		},
	}
	ops := api.New(cfg.OpsPort, st, buf, co, checks)

	return &Engine{
		source:          src,
		loop:            loop,
		sched:           sched,
		coordinator:     co,
		store:           store,
		dlqSink:         dlqSink,
		ops:             ops,
		stats:           st,
		shutdownTimeout: 10 * time.Second,
	}, nil
}
