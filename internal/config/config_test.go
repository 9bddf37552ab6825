package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Batch.Size != 100 || cfg.Batch.Interval != 5*time.Second {
		t.Fatalf("unexpected batch defaults: %+v", cfg.Batch)
	}
	if cfg.Kafka.Topic != "weather_data" || cfg.Kafka.DLQTopic != "weather_data_dlq" {
		t.Fatalf("unexpected kafka defaults: %+v", cfg.Kafka)
	}
	if cfg.Postgres.Database != "weather_db" {
		t.Fatalf("unexpected postgres defaults: %+v", cfg.Postgres)
	}
	if cfg.OpsPort != 8002 {
		t.Fatalf("unexpected ops port: %d", cfg.OpsPort)
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	raw := []byte(`schema_version: v1
batch:
  size: 250
  interval: 10s
kafka:
  topic: readings
postgres:
  host: db.internal
`)
	path := filepath.Join(dir, "weatherflow.yml")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Batch.Size != 250 || cfg.Batch.Interval != 10*time.Second {
		t.Fatalf("yaml batch values not applied: %+v", cfg.Batch)
	}
	if cfg.Kafka.Topic != "readings" {
		t.Fatalf("yaml topic not applied: %q", cfg.Kafka.Topic)
	}
	if cfg.Postgres.Host != "db.internal" {
		t.Fatalf("yaml postgres host not applied: %q", cfg.Postgres.Host)
	}
	// untouched keys keep their defaults
	if cfg.Kafka.DLQTopic != "weather_data_dlq" {
		t.Fatalf("default lost: %q", cfg.Kafka.DLQTopic)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("WEATHERFLOW__BATCH__SIZE", "7")
	t.Setenv("WEATHERFLOW__KAFKA__DLQ_TOPIC", "dead_letters")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Batch.Size != 7 {
		t.Fatalf("env batch size not applied: %d", cfg.Batch.Size)
	}
	if cfg.Kafka.DLQTopic != "dead_letters" {
		t.Fatalf("env dlq topic not applied: %q", cfg.Kafka.DLQTopic)
	}
}

func TestLoad_InvalidSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weatherflow.yml")
	if err := os.WriteFile(path, []byte("schema_version: v2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported schema_version")
	}
}
