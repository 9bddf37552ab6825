package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type BatchCfg struct {
	Size     int           `koanf:"size"`     // flush size threshold
	Interval time.Duration `koanf:"interval"` // flush time threshold
}

type KafkaCfg struct {
	Brokers    []string `koanf:"brokers"`
	Topic      string   `koanf:"topic"`
	DLQTopic   string   `koanf:"dlq_topic"`
	GroupID    string   `koanf:"group_id"`
	Driver     string   `koanf:"driver"`
	SinkDriver string   `koanf:"sink_driver"` // producer driver; "stdout" prints instead
	ConfigPath string   `koanf:"config_path"` // optional source driver YAML
}

type PostgresCfg struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
}

type RedisCfg struct {
	Addr     string        `koanf:"addr"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

type GeneratorCfg struct {
	Stations         int           `koanf:"stations"`
	Interval         time.Duration `koanf:"interval"`
	CollectorURL     string        `koanf:"collector_url"`
	DuplicatePercent int           `koanf:"duplicate_percent"`
}

type Config struct {
	OpsPort       int          `koanf:"ops_port"`       // consumer health/stats/flush/metrics
	CollectorPort int          `koanf:"collector_port"` // ingestion front door
	QueryPort     int          `koanf:"query_port"`     // read API

	Batch     BatchCfg     `koanf:"batch"`
	Kafka     KafkaCfg     `koanf:"kafka"`
	Postgres  PostgresCfg  `koanf:"postgres"`
	Redis     RedisCfg     `koanf:"redis"`
	Generator GeneratorCfg `koanf:"generator"`
}

// Load merges YAML (if present) with env-vars
// (prefix `WEATHERFLOW__`, delimiter `__`), e.g. WEATHERFLOW__BATCH__SIZE.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	sv := k.String("schema_version")
	if sv != "" && sv != "v1" {
		return Config{}, fmt.Errorf("config schema_version %q not supported (want v1)", sv)
	}

	_ = k.Load(env.Provider("WEATHERFLOW__", "__", func(s string) string {
		s = strings.TrimPrefix(s, "WEATHERFLOW__")
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(c *Config) {
	if c.OpsPort == 0 {
		c.OpsPort = 8002
	}
	if c.CollectorPort == 0 {
		c.CollectorPort = 8000
	}
	if c.QueryPort == 0 {
		c.QueryPort = 8001
	}
	if c.Batch.Size == 0 {
		c.Batch.Size = 100
	}
	if c.Batch.Interval == 0 {
		c.Batch.Interval = 5 * time.Second
	}
	if len(c.Kafka.Brokers) == 0 {
		c.Kafka.Brokers = []string{"localhost:9092"}
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "weather_data"
	}
	if c.Kafka.DLQTopic == "" {
		c.Kafka.DLQTopic = "weather_data_dlq"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "weather_consumers"
	}
	if c.Kafka.Driver == "" {
		c.Kafka.Driver = "sarama"
	}
	if c.Kafka.SinkDriver == "" {
		c.Kafka.SinkDriver = "kafka"
	}
	if c.Postgres.Host == "" {
		c.Postgres.Host = "localhost"
	}
	if c.Postgres.Port == 0 {
		c.Postgres.Port = 5432
	}
	if c.Postgres.Database == "" {
		c.Postgres.Database = "weather_db"
	}
	if c.Postgres.User == "" {
		c.Postgres.User = "weather_user"
	}
	if c.Postgres.Password == "" {
		c.Postgres.Password = "weather_password"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.CacheTTL == 0 {
		c.Redis.CacheTTL = 5 * time.Minute
	}
	if c.Generator.Stations == 0 {
		c.Generator.Stations = 3
	}
	if c.Generator.Interval == 0 {
		c.Generator.Interval = time.Second
	}
	if c.Generator.CollectorURL == "" {
		c.Generator.CollectorURL = "http://localhost:8000/weather-data"
	}
	if c.Generator.DuplicatePercent == 0 {
		c.Generator.DuplicatePercent = 20
	}
}
